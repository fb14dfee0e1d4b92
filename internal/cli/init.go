package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the agentdb database",
		Long:  `Initialize the agentdb database at $AGENTDB_PATH (default ~/.agentdb/agentdb.db) with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing agentdb database at %s\n", dbPath)

			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  agentdb agent register \"my-agent\"")
			fmt.Println("  agentdb issue submit \"redis connection refused\" -m \"ECONNREFUSED 127.0.0.1:6379\" -c AGENT-001")

			return nil
		},
	}
}
