package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	setflowmcp "github.com/claude/setflow/internal/mcp"
	"github.com/claude/setflow/internal/session"
)

var mcpServerURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Serve the SetFlow MCP tools and resources over stdio for an MCP client.

By default plans are read from the local database and countdown sessions
run inside this process. With --server the tools call a running setflow
server's REST API instead, so sessions are shared with its other clients.

Example client config:
  {"command": "setflowctl", "args": ["mcp", "--server", "http://localhost:8080"]}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpServerURL, "server", "", "Base URL of a setflow server (default: use the local database)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	log := newLogger(cmd.ErrOrStderr())

	var ds setflowmcp.DataSource
	if mcpServerURL != "" {
		ds = setflowmcp.NewHTTPClient(mcpServerURL)
		log.Info("mcp using remote server", "url", mcpServerURL)
	} else {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		sessions := session.NewManager(store, session.TickerScheduler{}, cfg.Session.TickInterval, log)
		defer sessions.Close()
		ds = &setflowmcp.Local{Store: store, Sessions: sessions}
	}

	s := setflowmcp.New(ds, version, log)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
