// Package cli wires cobra commands to the application services through
// the CLI adapters.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// localIP is the source address attributed to commands run from this
// machine. The guard's IP buckets still apply to it.
const localIP = "127.0.0.1"

// resolveContributor returns the acting contributor ID from the
// --contributor flag or the AGENTDB_CONTRIBUTOR environment variable.
func resolveContributor(cmd *cobra.Command) (string, error) {
	contributorID, _ := cmd.Flags().GetString("contributor")
	if contributorID == "" {
		contributorID = os.Getenv("AGENTDB_CONTRIBUTOR")
	}
	if contributorID == "" {
		return "", fmt.Errorf("no contributor identity\nHint: use --contributor or set AGENTDB_CONTRIBUTOR")
	}
	return contributorID, nil
}
