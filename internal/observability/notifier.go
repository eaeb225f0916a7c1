package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
)

// Notifier shares generated weekly reports with an external channel.
type Notifier interface {
	NotifyReport(userID string, report *models.WeeklyReport) error
}

// slackNotifier posts report summaries to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// maxSlackSectionText is Slack's limit for a section block's text.
const maxSlackSectionText = 3000

// NotifyReport posts report to the webhook. A nil report is a no-op.
func (s *slackNotifier) NotifyReport(userID string, report *models.WeeklyReport) error {
	if report == nil {
		return nil
	}

	body, err := json.Marshal(s.buildMessage(userID, report))
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *slackNotifier) buildMessage(userID string, report *models.WeeklyReport) slackMessage {
	header := fmt.Sprintf("Weekly report for %s (%s to %s)", userID, report.Range.Start, report.Range.End)
	narrative := strings.TrimSpace(report.Narrative)
	if narrative == "" {
		narrative = "_No narrative returned._"
	}
	if len(narrative) > maxSlackSectionText {
		narrative = narrative[:maxSlackSectionText-3] + "..."
	}
	summary := fmt.Sprintf("*Work updates:* %d   *Follow-up sessions:* %d",
		report.WorkUpdatesCount, report.FollowupSessionsCount)

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: header}},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: narrative}},
		{Type: "divider"},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: summary}},
	}
	return slackMessage{Blocks: blocks}
}
