// Package policy implements the taint enforcement decision procedure.
package policy

import (
	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/roles"
)

// Event is an audit record the engine asks its caller to emit. The
// engine itself never touches the emitter: decisions stay pure and
// trivially testable without a transport.
type Event struct {
	Param string           `json:"param"`
	Level model.TaintLevel `json:"level"`
	Role  model.ParamRole  `json:"role"`
}

// CheckResult is the outcome of one policy check.
type CheckResult struct {
	// Enforced is false when the caller supplied no taint information
	// and the check short-circuited to allow.
	Enforced  bool
	Mode      model.PolicyMode
	Violation *model.Violation
	Events    []Event
}

// Allowed returns true if execution may proceed.
func (r CheckResult) Allowed() bool {
	return r.Violation == nil
}

// Check decides whether an action call may proceed.
//
// Decision order (must not be changed):
//  1. No taint context — allow, no events, no enforcement.
//  2. Resolve mode: context mode, else defaultMode, else permissive.
//  3. Dispatch on mode: strict blocks any non-trusted level touching a
//     control parameter; permissive blocks untrusted/hostile on control
//     and audits derived on control; audit_only converts permissive
//     blocks into audited events and never blocks.
//
// Parameters are scanned in RoleMap declaration order restricted to the
// supplied set. A parameter absent from the RoleMap is data and can
// never violate, so the scan is complete.
func Check(rm *roles.RoleMap, params map[string]any, tc model.TaintContext, defaultMode model.PolicyMode) CheckResult {
	if !tc.HasLevel {
		return CheckResult{}
	}

	mode := tc.Mode
	if mode == "" {
		mode = defaultMode
	}
	if mode == "" {
		mode = model.ModePermissive
	}

	result := CheckResult{Enforced: true, Mode: mode}
	control := suppliedControls(rm, params)

	switch mode {
	case model.ModeStrict:
		if tc.Level == model.Trusted || len(control) == 0 {
			return result
		}
		result.Violation = &model.Violation{
			Param: control[0],
			Level: tc.Level,
			Role:  model.RoleControl,
		}

	case model.ModeAuditOnly:
		// Same decision procedure as permissive, but a would-be block
		// becomes a single audited event and execution proceeds.
		if v, _ := permissiveDecision(tc.Level, control); v != nil {
			result.Events = []Event{{Param: v.Param, Level: v.Level, Role: v.Role}}
		}

	default: // permissive
		v, events := permissiveDecision(tc.Level, control)
		result.Violation = v
		result.Events = events
	}

	return result
}

// permissiveDecision applies the permissive rules to the supplied
// control parameters: untrusted/hostile block on the first control
// parameter; derived allows but audits every control parameter.
func permissiveDecision(level model.TaintLevel, control []string) (*model.Violation, []Event) {
	if len(control) == 0 {
		return nil, nil
	}

	switch level {
	case model.Untrusted, model.Hostile:
		return &model.Violation{
			Param: control[0],
			Level: level,
			Role:  model.RoleControl,
		}, nil

	case model.Derived:
		events := make([]Event, 0, len(control))
		for _, p := range control {
			events = append(events, Event{Param: p, Level: level, Role: model.RoleControl})
		}
		return nil, events
	}

	return nil, nil
}

// suppliedControls returns the control parameters present in the call,
// in RoleMap declaration order.
func suppliedControls(rm *roles.RoleMap, params map[string]any) []string {
	var out []string
	for _, p := range rm.Params() {
		if rm.RoleFor(p) != model.RoleControl {
			continue
		}
		if _, ok := params[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
