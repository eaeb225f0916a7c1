package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/pkg/models"
)

var followupAnswers []string

var followupCmd = &cobra.Command{
	Use:   "followup",
	Short: "Answer the pending follow-up questions",
	Long: `Resume the follow-up questionnaire saved by 'dlog submit' in an
interactive wizard.

Use tab to move to the next question once the current one is answered,
shift+tab to go back, and tab or ctrl+s on the last question to send all
answers. esc saves your answers so far and quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, _, err := resumePendingFollowup()
		if err != nil {
			return err
		}
		return runFollowupWizard(cmd, fc)
	},
}

var followupShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the pending follow-up questions and answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if State == nil {
			return fmt.Errorf("state store not initialized")
		}
		if err := State.Load(); err != nil {
			return err
		}
		p := State.PendingFollowup()
		if p == nil {
			fmt.Println("No pending follow-up.")
			return nil
		}
		if p.QualityScore != nil {
			fmt.Printf("Quality score: %g/10\n", *p.QualityScore)
		}
		printFollowupQuestions(p.Session)
		return nil
	},
}

var followupAnswerCmd = &cobra.Command{
	Use:   "answer <n> <text>",
	Short: "Set the answer to question n",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question number %q", args[0])
		}
		fc, _, err := resumePendingFollowup()
		if err != nil {
			return err
		}
		if err := fc.SetAnswerAt(n-1, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		if err := saveFollowupProgress(fc); err != nil {
			return err
		}
		fmt.Printf("Answer %d of %d saved.\n", n, fc.Len())
		return nil
	},
}

var followupCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Send all follow-up answers to the backend",
	Long: `Send the answers of the pending follow-up session. Answers given with
--answer fill the questions in order, replacing saved answers. Every
question must have a non-blank answer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, _, err := resumePendingFollowup()
		if err != nil {
			return err
		}
		if len(followupAnswers) > fc.Len() {
			return fmt.Errorf("got %d answers for %d questions", len(followupAnswers), fc.Len())
		}
		for i, a := range followupAnswers {
			if err := fc.SetAnswerAt(i, a); err != nil {
				return err
			}
		}

		if err := fc.Complete(commandContext(cmd)); err != nil {
			if saveErr := saveFollowupProgress(fc); saveErr != nil {
				return saveErr
			}
			return noticeError(err)
		}
		if err := clearPendingFollowup(); err != nil {
			return err
		}
		printNotice(fc.Notice())
		return nil
	},
}

var followupDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop the pending follow-up session and keep the draft",
	Long: `Drop the pending follow-up session locally. The work update draft it
belongs to is kept and can be re-sent with 'dlog submit --retry'. Nothing is
sent to the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, err := resumePendingFollowup()
		if err != nil {
			return err
		}
		if err := Submitter.DismissFollowup(); err != nil {
			return err
		}
		draft := p.Draft
		State.SetDraft(&draft)
		State.SetPendingFollowup(nil)
		if err := State.Save(); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		fmt.Printf("Follow-up session %s discarded. Draft kept.\n", p.Session.ID)
		return nil
	},
}

// resumePendingFollowup loads the saved session and reopens it in the
// submission orchestrator.
func resumePendingFollowup() (*core.FollowupController, *models.PendingFollowup, error) {
	if Submitter == nil || State == nil {
		return nil, nil, fmt.Errorf("submission service not initialized")
	}
	if err := State.Load(); err != nil {
		return nil, nil, err
	}
	p := State.PendingFollowup()
	if p == nil {
		return nil, nil, fmt.Errorf("no pending follow-up (submit a work update first)")
	}
	fc, err := Submitter.Resume(p.Draft, p.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("resuming follow-up session %s: %w", p.Session.ID, err)
	}
	return fc, p, nil
}

// saveFollowupProgress stores the current answers and position of fc.
func saveFollowupProgress(fc *core.FollowupController) error {
	p := State.PendingFollowup()
	if p == nil {
		p = &models.PendingFollowup{Draft: Submitter.Draft()}
	}
	p.Session = fc.Session()
	State.SetPendingFollowup(p)
	if err := State.Save(); err != nil {
		return fmt.Errorf("saving follow-up progress: %w", err)
	}
	return nil
}

// clearPendingFollowup forgets the session and its draft once the backend
// has accepted the answers.
func clearPendingFollowup() error {
	State.SetPendingFollowup(nil)
	State.SetDraft(nil)
	if err := State.Save(); err != nil {
		return fmt.Errorf("clearing follow-up session: %w", err)
	}
	return nil
}

func printFollowupQuestions(s models.FollowupSession) {
	answered := 0
	for _, a := range s.Answers {
		if strings.TrimSpace(a) != "" {
			answered++
		}
	}
	fmt.Printf("Follow-up session %s (%d of %d answered)\n\n", s.ID, answered, len(s.Questions))
	for i, q := range s.Questions {
		marker := " "
		if i == s.Index {
			marker = ">"
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, q)
		if i < len(s.Answers) && strings.TrimSpace(s.Answers[i]) != "" {
			fmt.Printf("     %s\n", s.Answers[i])
		}
	}
}

func init() {
	followupCompleteCmd.Flags().StringArrayVarP(&followupAnswers, "answer", "a", nil, "Answer for the next question, in order (repeatable)")
	followupCmd.AddCommand(followupShowCmd)
	followupCmd.AddCommand(followupAnswerCmd)
	followupCmd.AddCommand(followupCompleteCmd)
	followupCmd.AddCommand(followupDiscardCmd)
	rootCmd.AddCommand(followupCmd)
}
