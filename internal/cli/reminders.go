package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var remindersJSON bool

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Show reminders derived from recent activity",
	Long: `Evaluate the local event log and show what needs attention: a
follow-up session left unanswered too long, no work update completed today,
or a backend that failed on the last request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reminders == nil {
			return fmt.Errorf("reminder engine not initialized (event log may be unavailable)")
		}

		reminders, err := Reminders.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating reminders: %w", err)
		}

		if remindersJSON {
			data, err := json.MarshalIndent(reminders, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting reminders as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(reminders) == 0 {
			fmt.Println("Nothing to do. You're up to date.")
			return nil
		}

		fmt.Printf("%d reminder(s):\n\n", len(reminders))
		for _, r := range reminders {
			sev := styleForSeverity(string(r.Severity)).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(r.Severity))))
			fmt.Printf("  %s %s\n", sev, r.Message)
		}

		return nil
	},
}

func init() {
	remindersCmd.Flags().BoolVar(&remindersJSON, "json", false, "Output reminders as JSON")
	rootCmd.AddCommand(remindersCmd)
}
