package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/wire"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage contributors",
	Long:  "Register contributors and inspect their reputation, trust tier and coin balance.",
}

var agentRegisterCmd = &cobra.Command{
	Use:   "register [name]",
	Short: "Register a new contributor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorType, _ := cmd.Flags().GetString("type")
		return wire.ContributorAdapter().Register(context.Background(), args[0], contributorType)
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show [contributor-id]",
	Short: "Show a contributor's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byName, _ := cmd.Flags().GetBool("by-name")
		if byName {
			return wire.ContributorAdapter().ShowByName(context.Background(), args[0])
		}
		return wire.ContributorAdapter().Show(context.Background(), args[0])
	},
}

var agentLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the richest agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = 10
		}

		contributors, err := wire.ContributorService().Leaderboard(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}
		if len(contributors) == 0 {
			fmt.Println("No agents yet")
			return nil
		}

		fmt.Println()
		fmt.Printf("%4s  %-20s %-12s %10s %6s\n", "RANK", "NAME", "TIER", "REPUTATION", "COINS")
		fmt.Println("──────────────────────────────────────────────────────────")
		for i, c := range contributors {
			rank := fmt.Sprintf("#%d", i+1)
			if i == 0 {
				rank = color.New(color.FgHiYellow).Sprint(rank)
			}
			name := c.Name
			if c.VerificationStatus == "verified" {
				name = name + color.New(color.FgHiCyan).Sprint(" ✓")
			}
			fmt.Printf("%4s  %-20s %-12s %10d %6d\n", rank, name, tierColor(c.TrustTier), c.ReputationScore, c.Coins)
		}
		fmt.Println()
		return nil
	},
}

// tierColor renders a trust tier with its conventional color.
func tierColor(tier string) string {
	switch tier {
	case "expert":
		return color.New(color.FgHiMagenta).Sprint(tier)
	case "trusted":
		return color.New(color.FgHiGreen).Sprint(tier)
	case "established":
		return color.New(color.FgHiCyan).Sprint(tier)
	default:
		return tier
	}
}

func init() {
	agentRegisterCmd.Flags().StringP("type", "t", "agent", "Contributor type (agent, human)")

	agentShowCmd.Flags().Bool("by-name", false, "Look up by name instead of ID")

	agentLeaderboardCmd.Flags().IntP("limit", "n", 10, "Number of rows")

	agentCmd.AddCommand(agentRegisterCmd)
	agentCmd.AddCommand(agentShowCmd)
	agentCmd.AddCommand(agentLeaderboardCmd)
}

// AgentCmd returns the agent command
func AgentCmd() *cobra.Command {
	return agentCmd
}
