package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display work update and report metrics",
	Long: `Display aggregated metrics derived from the local event log.

Metrics include submissions by status, rejections, follow-up sessions
started, completed and discarded, reports generated, failed requests and
the average quality score the backend gave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be unavailable)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Updates submitted:", metrics.Submissions)
		fmt.Printf("  %-24s %d\n", "Updates completed:", metrics.UpdatesCompleted)
		fmt.Printf("  %-24s %d\n", "Updates rejected:", metrics.Rejections)
		fmt.Printf("  %-24s %d\n", "Follow-ups started:", metrics.FollowupsStarted)
		fmt.Printf("  %-24s %d\n", "Follow-ups completed:", metrics.FollowupsCompleted)
		fmt.Printf("  %-24s %d\n", "Follow-ups discarded:", metrics.FollowupsDiscarded)
		fmt.Printf("  %-24s %d\n", "Reports generated:", metrics.ReportsGenerated)
		fmt.Printf("  %-24s %d\n", "Failed requests:", metrics.RequestFailures)
		if metrics.AvgQualityScore != nil {
			fmt.Printf("  %-24s %.1f/10\n", "Avg quality score:", *metrics.AvgQualityScore)
		}

		if len(metrics.SubmissionsByState) > 0 {
			statuses := make([]string, 0, len(metrics.SubmissionsByState))
			for status := range metrics.SubmissionsByState {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			fmt.Println("\n  Submissions by status:")
			for _, status := range statuses {
				fmt.Printf("    %-20s %d\n", status+":", metrics.SubmissionsByState[status])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Printf("\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Printf("  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
