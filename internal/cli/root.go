package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dlog/internal/core"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// userFlag overrides the configured user.id for a single command.
var userFlag string

var rootCmd = &cobra.Command{
	Use:   "dlog",
	Short: "dlog - daily work status client",
	Long: `dlog submits daily work updates to the status-reporting backend,
walks you through the follow-up questions the backend asks when an update
is too thin, and requests AI-generated weekly reports.

The backend address and your user id come from .dlogconfig, a .env file
or DLOG_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dlog %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (overrides user.id from config)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Interrupts cancel in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// resolveUser returns the --user flag if set, otherwise the configured user.
func resolveUser() string {
	if u := strings.TrimSpace(userFlag); u != "" {
		return u
	}
	return strings.TrimSpace(DefaultUser)
}

// commandContext returns the command's context, or Background when the
// command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// userFacingError carries the text a user should see while keeping the
// underlying error for errors.Is and errors.As.
type userFacingError struct {
	msg string
	err error
}

func (e *userFacingError) Error() string { return e.msg }
func (e *userFacingError) Unwrap() error { return e.err }

// noticeError turns a controller error into the message the user sees.
// Network failures become the generic retry message.
func noticeError(err error) error {
	return &userFacingError{msg: core.UserMessage(err), err: err}
}
