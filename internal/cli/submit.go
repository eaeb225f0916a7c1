package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dlog/internal/core"
	"github.com/valter-silva-au/dlog/pkg/models"
)

var (
	submitStatus        string
	submitStack         string
	submitTask          string
	submitProgress      string
	submitBlockers      string
	submitRetry         bool
	submitNoInteractive bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's work update",
	Long: `Submit a work update for today.

Status is one of working, wfh (or work-from-home) and leave. Working and wfh
updates need a stack and a task description; leave needs neither and any
task fields are dropped.

If the backend scores the update low it asks a few follow-up questions.
On a terminal they open in an interactive wizard; otherwise the session is
saved and can be answered with 'dlog followup'.

A draft that could not be sent is saved; --retry sends it again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Submitter == nil || State == nil {
			return fmt.Errorf("submission service not initialized")
		}
		if err := State.Load(); err != nil {
			return err
		}
		if p := State.PendingFollowup(); p != nil {
			return fmt.Errorf("%w: session %s (run 'dlog followup')", core.ErrFollowupPending, p.Session.ID)
		}

		draft, err := buildDraft(cmd)
		if err != nil {
			return err
		}

		outcome, err := Submitter.Submit(commandContext(cmd), draft)
		if err != nil {
			if !errors.Is(err, core.ErrBusy) {
				d := Submitter.Draft()
				State.SetDraft(&d)
				if saveErr := State.Save(); saveErr != nil {
					return fmt.Errorf("saving draft: %w", saveErr)
				}
			}
			return noticeError(err)
		}

		switch out := outcome.(type) {
		case core.Completed:
			State.SetDraft(nil)
			if err := State.Save(); err != nil {
				return fmt.Errorf("clearing saved draft: %w", err)
			}
			printNotice(core.Notice{Kind: core.NoticeSuccess, Text: out.Message})
			if out.QualityScore != nil {
				fmt.Printf("  Quality score: %g/10\n", *out.QualityScore)
			}
			return nil

		case core.FollowupRequired:
			printNotice(Submitter.Notice())
			State.SetDraft(nil)
			State.SetPendingFollowup(&models.PendingFollowup{
				Session:      out.Followup.Session(),
				Draft:        Submitter.Draft(),
				QualityScore: out.QualityScore,
			})
			if err := State.Save(); err != nil {
				return fmt.Errorf("saving follow-up session: %w", err)
			}
			if submitNoInteractive || !isatty.IsTerminal(os.Stdin.Fd()) {
				printFollowupQuestions(out.Followup.Session())
				fmt.Println("\nAnswer with 'dlog followup answer <n> <text>' then 'dlog followup complete',")
				fmt.Println("or run 'dlog followup' on a terminal.")
				return nil
			}
			return runFollowupWizard(cmd, out.Followup)

		default:
			return fmt.Errorf("unexpected submission outcome %T", outcome)
		}
	},
}

// buildDraft assembles the draft from flags, or from the saved draft with
// --retry. Flags given alongside --retry override the saved values.
func buildDraft(cmd *cobra.Command) (models.WorkUpdateDraft, error) {
	draft := models.NewDraft(resolveUser())
	if submitRetry {
		saved := State.Draft()
		if saved == nil {
			return draft, fmt.Errorf("no saved draft to retry")
		}
		draft = *saved
		if u := strings.TrimSpace(userFlag); u != "" {
			draft.UserID = u
		}
	}

	flags := cmd.Flags()
	if !submitRetry || flags.Changed("status") {
		status, err := models.ParseWorkStatus(submitStatus)
		if err != nil {
			return draft, err
		}
		draft.Status = status
	}
	if !submitRetry || flags.Changed("stack") {
		stack := strings.TrimSpace(submitStack)
		if stack != "" && !models.IsStackOption(stack) {
			return draft, fmt.Errorf("invalid stack %q: must be one of %s", stack, strings.Join(models.StackOptions, ", "))
		}
		draft.Stack = stack
	}
	if !submitRetry || flags.Changed("task") {
		draft.Task = submitTask
	}
	if !submitRetry || flags.Changed("progress") {
		draft.Progress = submitProgress
	}
	if !submitRetry || flags.Changed("blockers") {
		draft.Blockers = submitBlockers
	}
	return draft.WithStatus(draft.Status), nil
}

func printNotice(n core.Notice) {
	if n.Text == "" {
		return
	}
	switch n.Kind {
	case core.NoticeSuccess:
		fmt.Println(successStyle.Render("✓ " + n.Text))
	case core.NoticeInfo:
		fmt.Println(infoStyle.Render("ℹ " + n.Text))
	default:
		fmt.Println(errorStyle.Render("✗ " + n.Text))
	}
}

func init() {
	submitCmd.Flags().StringVarP(&submitStatus, "status", "s", string(models.StatusWorking), "Work status: working, wfh, leave")
	submitCmd.Flags().StringVar(&submitStack, "stack", "", "Task stack ("+strings.Join(models.StackOptions, ", ")+")")
	submitCmd.Flags().StringVarP(&submitTask, "task", "t", "", "What you are working on")
	submitCmd.Flags().StringVarP(&submitProgress, "progress", "p", "", "Progress made so far")
	submitCmd.Flags().StringVarP(&submitBlockers, "blockers", "b", "", "Anything blocking you")
	submitCmd.Flags().BoolVar(&submitRetry, "retry", false, "Re-send the saved draft")
	submitCmd.Flags().BoolVar(&submitNoInteractive, "no-interactive", false, "Never open the follow-up wizard")
	rootCmd.AddCommand(submitCmd)
}
