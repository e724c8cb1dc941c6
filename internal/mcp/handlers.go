package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/taintgate/internal/audit"
	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/policy"
	"github.com/ppiankov/taintgate/internal/taint"
	"github.com/ppiankov/taintgate/internal/tracer"
)

// --- Input/Output types ---

// CheckInput defines parameters for the taintgate_check tool.
type CheckInput struct {
	Action string         `json:"action" jsonschema:"action identity, e.g. browser.navigate"`
	Params map[string]any `json:"params,omitempty" jsonschema:"parameter name to value"`
	Taint  string         `json:"taint,omitempty" jsonschema:"taint level of the inputs (trusted/derived/untrusted/hostile)"`
	Mode   string         `json:"mode,omitempty" jsonschema:"enforcement mode for this call (permissive/audit_only/strict)"`
}

// CheckOutput contains the policy decision.
type CheckOutput struct {
	Allowed  bool   `json:"allowed"`
	Enforced bool   `json:"enforced"`
	Mode     string `json:"mode,omitempty"`
	Param    string `json:"param,omitempty"`
	Level    string `json:"level,omitempty"`
	Role     string `json:"role,omitempty"`
	Audited  int    `json:"audited_events"`
}

// PropagateInput defines parameters for the taintgate_propagate tool.
type PropagateInput struct {
	Levels []string `json:"levels" jsonschema:"input taint levels to combine"`
}

// PropagateOutput contains the combined output taint level.
type PropagateOutput struct {
	Output string `json:"output"`
}

// RolesInput defines parameters for the taintgate_roles tool.
type RolesInput struct {
	Action string `json:"action" jsonschema:"action identity to look up"`
}

// RolesOutput lists the declared roles for an action.
type RolesOutput struct {
	Registered bool       `json:"registered"`
	Roles      []RoleItem `json:"roles"`
}

// RoleItem describes one declared parameter role.
type RoleItem struct {
	Param string `json:"param"`
	Role  string `json:"role"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	registry, defaultMode, policyHash := s.snapshot()

	callCtx := map[string]any{}
	if input.Taint != "" {
		callCtx["taint"] = input.Taint
	}
	if input.Mode != "" {
		callCtx["taint_policy"] = input.Mode
	}
	tc := model.ExtractContext(callCtx)

	rm := registry.RolesFor(input.Action)
	result := policy.Check(rm, input.Params, tc, defaultMode)

	callID := tracer.NewCallID()
	for _, ev := range result.Events {
		s.emitter.Audited(audit.Record{
			CallID:     callID,
			Action:     input.Action,
			Param:      ev.Param,
			Role:       ev.Role,
			Level:      ev.Level,
			Mode:       result.Mode,
			PolicyHash: policyHash,
		})
	}

	out := CheckOutput{
		Allowed:  result.Allowed(),
		Enforced: result.Enforced,
		Audited:  len(result.Events),
	}
	if result.Enforced {
		out.Mode = string(result.Mode)
	}
	if v := result.Violation; v != nil {
		out.Param = v.Param
		out.Level = string(v.Level)
		out.Role = string(v.Role)
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	return nil, out, nil
}

func (s *Server) handlePropagate(ctx context.Context, req *mcpsdk.CallToolRequest, input PropagateInput) (*mcpsdk.CallToolResult, PropagateOutput, error) {
	levels := make([]model.TaintLevel, len(input.Levels))
	for i, l := range input.Levels {
		levels[i] = model.ParseLevel(l)
	}
	return nil, PropagateOutput{Output: string(taint.Propagate(levels...))}, nil
}

func (s *Server) handleRoles(ctx context.Context, req *mcpsdk.CallToolRequest, input RolesInput) (*mcpsdk.CallToolResult, RolesOutput, error) {
	registry, _, _ := s.snapshot()

	out := RolesOutput{
		Registered: registry.IsRegistered(input.Action),
		Roles:      []RoleItem{},
	}

	rm := registry.RolesFor(input.Action)
	for _, param := range rm.Params() {
		out.Roles = append(out.Roles, RoleItem{
			Param: param,
			Role:  string(rm.RoleFor(param)),
		})
	}

	return nil, out, nil
}
