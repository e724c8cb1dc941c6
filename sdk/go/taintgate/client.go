package taintgate

import (
	"fmt"

	"github.com/ppiankov/taintgate/internal/audit"
	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/policy"
	"github.com/ppiankov/taintgate/internal/roles"
	"github.com/ppiankov/taintgate/internal/taint"
	"github.com/ppiankov/taintgate/internal/tracer"
)

// Client holds the taint enforcement pipeline for in-process gating.
// All decision paths are pure functions over immutable state, so a
// Client is safe for concurrent use once role registration is done.
type Client struct {
	cfg         clientConfig
	policyCfg   *policy.Config
	policyHash  string
	defaultMode model.PolicyMode
	registry    *roles.Registry
	emitter     Emitter
	auditLog    *audit.Log
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	policyCfg, policyHash, err := policy.LoadConfigWithHash(cfg.policyPath)
	if err != nil {
		return nil, fmt.Errorf("taintgate: failed to load policy config: %w", err)
	}

	c := &Client{
		cfg:         cfg,
		policyCfg:   policyCfg,
		policyHash:  policyHash,
		defaultMode: policyCfg.DefaultMode(),
		registry:    policyCfg.BuildRegistry(),
	}
	if cfg.mode != "" {
		c.defaultMode = toInternalMode(cfg.mode)
	}

	switch {
	case cfg.emitter != nil:
		c.emitter = cfg.emitter
	default:
		path := cfg.auditLogPath
		if path == "" {
			path = policyCfg.AuditLog
		}
		if path == "" {
			c.emitter = nopEmitter{}
			break
		}
		log, err := audit.Open(path)
		if err != nil {
			return nil, fmt.Errorf("taintgate: failed to open audit log: %w", err)
		}
		c.auditLog = log
		c.emitter = &logEmitter{
			sink:       audit.NewLogEmitter(log),
			policyHash: policyHash,
		}
	}

	return c, nil
}

// Close releases the audit log, if one was opened.
func (c *Client) Close() error {
	if c.auditLog != nil {
		return c.auditLog.Close()
	}
	return nil
}

// RegisterRoles declares an action's parameter roles in declaration
// order. Call at action-definition time, before the Client is shared
// across goroutines; role maps are immutable once declared.
func (c *Client) RegisterRoles(action string, decls ...RoleDecl) {
	rm := roles.NewRoleMap()
	for _, d := range decls {
		rm.Declare(d.Param, model.ParseRole(string(d.Role)))
	}
	c.registry.Register(action, rm)
}

// Check evaluates taint policy for an action without executing
// anything. Audited events are emitted; a blocked outcome is reported
// in the Result but produces no blocked event (nothing was stopped).
func (c *Client) Check(action Action) Result {
	res, _, _ := c.check(action, c.defaultMode)
	return toResult(res)
}

// Propagate combines input trust levels into the output trust level:
// the riskiest input wins, and no inputs yield trusted.
func Propagate(levels ...TaintLevel) TaintLevel {
	in := make([]model.TaintLevel, len(levels))
	for i, l := range levels {
		in[i] = model.ParseLevel(string(l))
	}
	return TaintLevel(taint.Propagate(in...))
}

// check runs the engine and emits any audited events. Returns the raw
// engine result, the normalized context, and the call ID for follow-up
// events.
func (c *Client) check(action Action, defaultMode model.PolicyMode) (policy.CheckResult, model.TaintContext, string) {
	callID := tracer.NewCallID()
	tc := model.ExtractContext(action.Context)
	rm := c.registry.RolesFor(action.Name)

	res := policy.Check(rm, action.Params, tc, defaultMode)

	for _, ev := range res.Events {
		c.emitter.Audited(Event{
			Kind:   audit.EventAudited,
			CallID: callID,
			Action: action.Name,
			Param:  ev.Param,
			Role:   ParamRole(ev.Role),
			Level:  TaintLevel(ev.Level),
			Mode:   PolicyMode(res.Mode),
		})
	}

	return res, tc, callID
}

// toResult maps an engine result to the SDK type.
func toResult(res policy.CheckResult) Result {
	return Result{
		Allowed:   res.Allowed(),
		Enforced:  res.Enforced,
		Mode:      PolicyMode(res.Mode),
		Violation: toViolation(res.Violation),
	}
}

// nopEmitter discards all events.
type nopEmitter struct{}

func (nopEmitter) Audited(Event)    {}
func (nopEmitter) Propagated(Event) {}
func (nopEmitter) Blocked(Event)    {}

// logEmitter bridges SDK events to the hash-chained audit log, stamping
// each record with the active policy hash.
type logEmitter struct {
	sink       *audit.LogEmitter
	policyHash string
}

func (e *logEmitter) Audited(ev Event)    { e.sink.Audited(e.record(ev)) }
func (e *logEmitter) Propagated(ev Event) { e.sink.Propagated(e.record(ev)) }
func (e *logEmitter) Blocked(ev Event)    { e.sink.Blocked(e.record(ev)) }

func (e *logEmitter) record(ev Event) audit.Record {
	return audit.Record{
		CallID:      ev.CallID,
		Action:      ev.Action,
		Param:       ev.Param,
		Role:        model.ParamRole(ev.Role),
		Level:       model.TaintLevel(ev.Level),
		InputLevel:  model.TaintLevel(ev.InputLevel),
		OutputLevel: model.TaintLevel(ev.OutputLevel),
		Mode:        model.PolicyMode(ev.Mode),
		PolicyHash:  e.policyHash,
	}
}
