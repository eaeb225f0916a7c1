package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dlog/internal/core"
)

// followupCompletedMsg carries the result of the completion request.
type followupCompletedMsg struct {
	err error
}

type followupWizardModel struct {
	ctx      context.Context
	fc       *core.FollowupController
	input    textarea.Model
	progress progress.Model
	width    int

	submitting bool
	completed  bool
	err        error
}

var questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))

func newFollowupWizardModel(ctx context.Context, fc *core.FollowupController) followupWizardModel {
	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(72)
	ta.SetHeight(4)
	ta.SetValue(fc.Answer())
	ta.Focus()

	return followupWizardModel{
		ctx:      ctx,
		fc:       fc,
		input:    ta,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m followupWizardModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m followupWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w > 100 {
			w = 100
		}
		if w < 20 {
			w = 20
		}
		m.input.SetWidth(w)
		m.progress.Width = w / 2
		return m, nil

	case followupCompletedMsg:
		m.submitting = false
		if msg.err == nil {
			m.completed = true
			return m, tea.Quit
		}
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			// Every key, ctrl+c included, is inert until the backend answers.
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.sync()
			return m, tea.Quit
		case "tab", "ctrl+n":
			return m.advance()
		case "shift+tab", "ctrl+p":
			m.sync()
			if m.fc.Previous() {
				m.input.SetValue(m.fc.Answer())
				m.err = nil
			}
			return m, nil
		case "ctrl+s":
			if m.fc.IsLast() {
				return m.complete()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sync()
	return m, cmd
}

// sync copies the text area into the controller's current answer.
func (m followupWizardModel) sync() {
	_ = m.fc.SetAnswer(m.input.Value())
}

// advance moves to the next question, or completes on the last one.
func (m followupWizardModel) advance() (tea.Model, tea.Cmd) {
	m.sync()
	if m.fc.IsLast() {
		return m.complete()
	}
	if m.fc.Next() {
		m.input.SetValue(m.fc.Answer())
		m.err = nil
	}
	return m, nil
}

func (m followupWizardModel) complete() (tea.Model, tea.Cmd) {
	m.sync()
	m.submitting = true
	m.err = nil
	fc, ctx := m.fc, m.ctx
	return m, func() tea.Msg {
		return followupCompletedMsg{err: fc.Complete(ctx)}
	}
}

func (m followupWizardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Follow-up questions "))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  Question %d of %d  %s\n\n", m.fc.Index()+1, m.fc.Len(), m.progress.ViewAs(m.fc.Progress()))
	b.WriteString("  " + questionStyle.Render(m.fc.Question()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.submitting:
		b.WriteString(infoStyle.Render("  Submitting answers... (waiting for the backend)"))
		b.WriteString("\n\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("  " + core.UserMessage(m.err)))
		b.WriteString("\n\n")
	}

	advance := "tab: next"
	if m.fc.IsLast() {
		advance = "tab/ctrl+s: complete"
	}
	b.WriteString(helpStyle.Render(advance + " | shift+tab: back | esc: save and quit"))
	return b.String()
}

// runFollowupWizard runs the interactive wizard for fc and persists the
// outcome: a completed session is cleared, anything else is saved for later.
func runFollowupWizard(cmd *cobra.Command, fc *core.FollowupController) error {
	p := tea.NewProgram(newFollowupWizardModel(commandContext(cmd), fc))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running follow-up wizard: %w", err)
	}

	if wm, ok := final.(followupWizardModel); ok && wm.completed {
		if err := clearPendingFollowup(); err != nil {
			return err
		}
		printNotice(fc.Notice())
		return nil
	}

	if err := saveFollowupProgress(fc); err != nil {
		return err
	}
	if wm, ok := final.(followupWizardModel); ok && wm.err != nil && !errors.Is(wm.err, core.ErrBusy) {
		return noticeError(wm.err)
	}
	fmt.Println("Follow-up saved. Resume with 'dlog followup'.")
	return nil
}
