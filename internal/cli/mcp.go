package cli

import (
	"context"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpadapter "resume-studio/internal/adapter/mcp"
)

func mcpCmd(rt *runtime, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the resume tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, done, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeInto(&err, done)

			srv := mcpadapter.NewServer(mcpadapter.Deps{
				Session:  a.Session,
				Exporter: a.Exporter,
				Version:  version,
			})
			a.Log.Info("MCP server started (stdio transport)")
			err = server.NewStdioServer(srv).Listen(cmd.Context(), os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Error("MCP stdio server error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
