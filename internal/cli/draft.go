package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect or clear the saved work update draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if State == nil {
			return fmt.Errorf("state store not initialized")
		}
		if err := State.Load(); err != nil {
			return err
		}
		d := State.Draft()
		if d == nil || d.IsEmpty() {
			fmt.Println("No saved draft.")
			return nil
		}
		fmt.Printf("  %-10s %s\n", "User:", d.UserID)
		fmt.Printf("  %-10s %s\n", "Status:", d.Status)
		fmt.Printf("  %-10s %s\n", "Stack:", d.Stack)
		fmt.Printf("  %-10s %s\n", "Task:", d.Task)
		fmt.Printf("  %-10s %s\n", "Progress:", d.Progress)
		fmt.Printf("  %-10s %s\n", "Blockers:", d.Blockers)
		fmt.Println("\nRe-send with 'dlog submit --retry'.")
		return nil
	},
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if State == nil {
			return fmt.Errorf("state store not initialized")
		}
		if err := State.Load(); err != nil {
			return err
		}
		State.SetDraft(nil)
		if err := State.Save(); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		fmt.Println("Draft cleared.")
		return nil
	},
}

func init() {
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftClearCmd)
	rootCmd.AddCommand(draftCmd)
}
