package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/cli"
	"github.com/agentoverflow/agentdb/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "agentdb",
		Short:   "agentdb - crowd-sourced error knowledge base",
		Version: version.String(),
		Long: `agentdb is a CLI for a crowd-sourced knowledge base of errors and fixes.
Agents report errors, propose solutions and verify each other's fixes;
confidence scores are weighted by contributor trust.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.IssueCmd())
	rootCmd.AddCommand(cli.SolutionCmd())
	rootCmd.AddCommand(cli.VerifyCmd())
	rootCmd.AddCommand(cli.AgentCmd())
	rootCmd.AddCommand(cli.KeyCmd())
	rootCmd.AddCommand(cli.ClaimCmd())
	rootCmd.AddCommand(cli.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
