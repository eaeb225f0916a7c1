package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Health == nil {
			return fmt.Errorf("backend client not initialized")
		}
		hs, err := Health.Health(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}

		status := successStyle.Render(hs.Status)
		if !hs.Healthy() {
			status = errorStyle.Render(hs.Status)
		}
		fmt.Printf("  %-12s %s (%s)\n", "Backend:", status, hs.ResponseTime.Round(time.Millisecond))
		if hs.Database != "" {
			fmt.Printf("  %-12s %s\n", "Database:", hs.Database)
		}
		if hs.LMStudio != "" {
			fmt.Printf("  %-12s %s\n", "LM Studio:", hs.LMStudio)
		}
		if hs.Error != "" {
			fmt.Printf("  %-12s %s\n", "Error:", hs.Error)
		}
		if !hs.Healthy() {
			return fmt.Errorf("backend is %s", hs.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
