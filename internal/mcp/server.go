// Package mcp exposes taint enforcement as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/taintgate/internal/audit"
	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/policy"
	"github.com/ppiankov/taintgate/internal/roles"
)

// Config holds MCP server configuration.
type Config struct {
	PolicyPath   string
	AuditLogPath string
}

// Server wraps the MCP SDK server with taint policy enforcement.
// Policy state swaps atomically on hot reload; the decision procedure
// itself is pure, so concurrent tool calls need no further locking.
type Server struct {
	mcpServer *mcpsdk.Server

	mu          sync.RWMutex
	policyCfg   *policy.Config
	policyHash  string
	registry    *roles.Registry
	defaultMode model.PolicyMode

	emitter  audit.Emitter
	auditLog *audit.Log
	cfg      Config
}

// New creates an MCP server with loaded policy and registered tools.
func New(cfg Config) (*Server, error) {
	policyCfg, policyHash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy config: %w", err)
	}

	s := &Server{
		policyCfg:   policyCfg,
		policyHash:  policyHash,
		registry:    policyCfg.BuildRegistry(),
		defaultMode: policyCfg.DefaultMode(),
		cfg:         cfg,
	}

	logPath := cfg.AuditLogPath
	if logPath == "" {
		logPath = policyCfg.AuditLog
	}
	if logPath != "" {
		auditLog, err := audit.Open(logPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		s.auditLog = auditLog
		s.emitter = audit.NewLogEmitter(auditLog)
	} else {
		s.emitter = audit.NopEmitter{}
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "taintgate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// ReloadPolicy atomically swaps the policy config and role registry.
// Called by the hot-reloader on file change. The audit log stays bound
// to the path resolved at startup.
func (s *Server) ReloadPolicy() error {
	policyCfg, policyHash, err := policy.LoadConfigWithHash(s.cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to reload policy config: %w", err)
	}

	s.mu.Lock()
	s.policyCfg = policyCfg
	s.policyHash = policyHash
	s.registry = policyCfg.BuildRegistry()
	s.defaultMode = policyCfg.DefaultMode()
	s.mu.Unlock()

	return nil
}

// snapshot returns the current policy state for one decision.
func (s *Server) snapshot() (*roles.Registry, model.PolicyMode, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry, s.defaultMode, s.policyHash
}

// registerTools adds all taintgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taintgate_check",
		Description: "Check whether an action's parameters may be driven by inputs at the given taint level. Returns the decision and the violating parameter when blocked; does not execute anything.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taintgate_propagate",
		Description: "Combine input taint levels into the output taint level (riskiest input wins; no inputs means trusted).",
	}, s.handlePropagate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taintgate_roles",
		Description: "Show the declared parameter roles for an action. Undeclared parameters are data.",
	}, s.handleRoles)
}
