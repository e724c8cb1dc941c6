package taintgate

import (
	"context"

	"github.com/ppiankov/taintgate/internal/audit"
	"github.com/ppiankov/taintgate/internal/taint"
)

// ToolFunc is the function signature that Wrap guards. The caller
// provides an Action describing the intended operation.
type ToolFunc func(ctx context.Context, action Action) (any, error)

// Wrap returns a new ToolFunc that enforces taint policy around fn.
//
// Per call: the taint context is extracted and checked before fn runs;
// a blocked check emits a blocked event and returns *BlockedError
// without calling fn. On success, if the context carried a trust level,
// the output level is propagated from it and a propagated event is
// emitted. A blocked check is terminal — any retry policy belongs to
// the caller.
func (c *Client) Wrap(fn ToolFunc, opts ...WrapOption) ToolFunc {
	wcfg := wrapConfig{}
	for _, o := range opts {
		o(&wcfg)
	}

	defaultMode := c.defaultMode
	if wcfg.mode != "" {
		defaultMode = toInternalMode(wcfg.mode)
	}

	return func(ctx context.Context, action Action) (any, error) {
		res, tc, callID := c.check(action, defaultMode)

		if res.Violation != nil {
			c.emitter.Blocked(Event{
				Kind:   audit.EventBlocked,
				CallID: callID,
				Action: action.Name,
				Param:  res.Violation.Param,
				Role:   ParamRole(res.Violation.Role),
				Level:  TaintLevel(res.Violation.Level),
				Mode:   PolicyMode(res.Mode),
			})
			return nil, &BlockedError{
				Action:    action,
				Mode:      PolicyMode(res.Mode),
				Violation: *toViolation(res.Violation),
			}
		}

		out, err := fn(ctx, action)
		if err != nil {
			return out, err
		}

		if tc.HasLevel {
			outLevel := taint.Propagate(tc.Level)
			c.emitter.Propagated(Event{
				Kind:        audit.EventPropagated,
				CallID:      callID,
				Action:      action.Name,
				InputLevel:  TaintLevel(tc.Level),
				OutputLevel: TaintLevel(outLevel),
				Mode:        PolicyMode(res.Mode),
			})
		}

		return out, nil
	}
}
