package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	dlogmcp "github.com/valter-silva-au/dlog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the dlog MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dlog MCP server on stdio",
	Long: `Start the dlog MCP server on stdio transport.

The server lets AI assistants file work updates on your behalf:
validate_work_update, submit_work_update, answer_followup,
complete_followup, generate_weekly_report, get_metrics, get_reminders.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Submitter == nil || Reports == nil {
			return fmt.Errorf("dlog services not initialized")
		}

		srv := dlogmcp.NewServer(Submitter, Reports, MetricsCalc, Reminders, resolveUser(), appVersion)
		if err := srv.Run(commandContext(cmd)); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
