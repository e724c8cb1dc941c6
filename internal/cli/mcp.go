package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "github.com/ppiankov/taintgate/internal/mcp"
)

var (
	mcpPolicy   string
	mcpAuditLog string
	mcpNoReload bool
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "Path to policy YAML (default ~/.taintgate/policy.yaml)")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to the JSONL audit log (overrides policy setting)")
	mcpCmd.Flags().BoolVar(&mcpNoReload, "no-reload", false, "Disable policy hot-reload on file change")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs taintgate as an MCP (Model Context Protocol) server over stdio.\nExposes tools: taintgate_check, taintgate_propagate, taintgate_roles.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := gatemcp.Config{
		PolicyPath:   mcpPolicy,
		AuditLogPath: mcpAuditLog,
	}

	srv, err := gatemcp.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	if !mcpNoReload && mcpPolicy != "" {
		reloader, err := gatemcp.NewReloader(srv, mcpPolicy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hot-reload disabled: %v\n", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	fmt.Fprintln(os.Stderr, "taintgate MCP server running on stdio")

	return srv.Run(ctx)
}
