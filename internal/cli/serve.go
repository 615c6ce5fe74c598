package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pv-case-assessor/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Serve the assess_case, assess_event, record_feedback and list_feedback tools
to an MCP client over stdin/stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if err := cliCtx.Manager.EnsureDataDir(); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			server, err := mcp.NewServer(cliCtx.Config, cliCtx.Assessor, mcp.WithLogger(cliCtx.Logger))
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}

			cliCtx.Logger.Info("MCP server stopped")
			return nil
		},
	}
}
