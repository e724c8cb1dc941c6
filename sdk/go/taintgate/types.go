package taintgate

import (
	"fmt"

	"github.com/ppiankov/taintgate/internal/model"
)

// TaintLevel classifies input provenance, ordered by increasing risk.
type TaintLevel string

const (
	Trusted   TaintLevel = TaintLevel(model.Trusted)
	Derived   TaintLevel = TaintLevel(model.Derived)
	Untrusted TaintLevel = TaintLevel(model.Untrusted)
	Hostile   TaintLevel = TaintLevel(model.Hostile)
)

// ParamRole classifies what a parameter influences.
type ParamRole string

const (
	Control ParamRole = ParamRole(model.RoleControl)
	Data    ParamRole = ParamRole(model.RoleData)
)

// PolicyMode selects how a taint violation is handled.
type PolicyMode string

const (
	Permissive PolicyMode = PolicyMode(model.ModePermissive)
	AuditOnly  PolicyMode = PolicyMode(model.ModeAuditOnly)
	Strict     PolicyMode = PolicyMode(model.ModeStrict)
)

// Action describes one gated action call.
type Action struct {
	Name    string         // action identity, e.g. "browser.navigate"
	Params  map[string]any // parameter name → value
	Context map[string]any // execution context: "taint", "taint_context", "taint_policy"
}

// RoleDecl declares one parameter's role at action-definition time.
type RoleDecl struct {
	Param string
	Role  ParamRole
}

// Violation identifies the parameter whose role/trust combination was
// disallowed under the active mode.
type Violation struct {
	Param string
	Level TaintLevel
	Role  ParamRole
}

// Result is a policy check outcome.
type Result struct {
	Allowed   bool
	Enforced  bool // false when the context carried no taint information
	Mode      PolicyMode
	Violation *Violation
}

// BlockedError is returned when enforcement blocks an action before its
// body executes.
type BlockedError struct {
	Action    Action
	Mode      PolicyMode
	Violation Violation
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("taintgate blocked %s: %s parameter %q carries %s taint (%s mode)",
		e.Action.Name, e.Violation.Role, e.Violation.Param, e.Violation.Level, e.Mode)
}

// Event is one audit record delivered to an Emitter. Every event is
// self-contained so consumers can reconstruct ordering across
// concurrent calls.
type Event struct {
	Kind        string // "audited", "propagated", or "blocked"
	CallID      string
	Action      string
	Param       string
	Role        ParamRole
	Level       TaintLevel
	InputLevel  TaintLevel
	OutputLevel TaintLevel
	Mode        PolicyMode
}

// Emitter receives policy decisions. Delivery is fire-and-forget from
// the engine's perspective: implementations must not panic and cannot
// alter the decision that produced the event.
type Emitter interface {
	Audited(e Event)
	Propagated(e Event)
	Blocked(e Event)
}

// toInternalMode maps an SDK mode to the engine's type, failing closed
// on values constructed outside this package's constants.
func toInternalMode(m PolicyMode) model.PolicyMode {
	return model.ParseMode(string(m), model.ModePermissive)
}

// toViolation maps an internal violation to the SDK type.
func toViolation(v *model.Violation) *Violation {
	if v == nil {
		return nil
	}
	return &Violation{
		Param: v.Param,
		Level: TaintLevel(v.Level),
		Role:  ParamRole(v.Role),
	}
}
