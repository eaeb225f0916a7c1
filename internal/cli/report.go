package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dlog/pkg/models"
)

var (
	reportFrom   string
	reportTo     string
	reportJSON   bool
	reportNotify bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a weekly report",
	Long: `Ask the backend for an AI-generated summary of your work updates and
follow-up answers over a date range. The range defaults to the last
report.default_days days (7) up to today. Dates are YYYY-MM-DD.

--notify posts the report to the configured Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Reports == nil {
			return fmt.Errorf("report service not initialized")
		}
		if reportNotify && Notifier == nil {
			return fmt.Errorf("notifications are not configured (set notifications.enabled and notifications.slack.webhook_url)")
		}

		user := resolveUser()
		if err := Reports.Open(user); err != nil {
			return noticeError(err)
		}
		dates := Reports.Range()
		if cmd.Flags().Changed("from") {
			dates.Start = reportFrom
		}
		if cmd.Flags().Changed("to") {
			dates.End = reportTo
		}

		report, err := Reports.Generate(commandContext(cmd), dates)
		if err != nil {
			return noticeError(err)
		}

		if reportJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			fmt.Println(renderReport(report, 80))
		}

		if reportNotify {
			if err := Notifier.NotifyReport(user, report); err != nil {
				return fmt.Errorf("sending report notification: %w", err)
			}
			fmt.Println(successStyle.Render("✓ Report posted to Slack."))
		}
		return nil
	},
}

// formatDateLabel renders a YYYY-MM-DD date as "Jan 2, 2006". Unparseable
// values are shown as given.
func formatDateLabel(s string) string {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// renderReport lays out the narrative and its counts in a bordered panel.
func renderReport(r *models.WeeklyReport, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s - %s", formatDateLabel(r.Range.Start), formatDateLabel(r.Range.End))))
	b.WriteString("\n")

	narrative := strings.TrimSpace(r.Narrative)
	if narrative == "" {
		narrative = helpStyle.Render("No narrative returned.")
	}
	b.WriteString(narrative)

	if r.HasSummary {
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %-22s %d\n", "Work updates:", r.WorkUpdatesCount))
		b.WriteString(fmt.Sprintf("  %-22s %d", "Follow-up sessions:", r.FollowupSessionsCount))
	}

	body := panelStyle.Width(width - 4).Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" Weekly Report "), "", body)
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output the report as JSON")
	reportCmd.Flags().BoolVar(&reportNotify, "notify", false, "Post the report to Slack")
	rootCmd.AddCommand(reportCmd)
}
