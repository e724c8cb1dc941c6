// Package taintgate provides in-process taint enforcement for Go agent
// frameworks. It wraps action functions, classifies each parameter as
// control or data, compares the caller-supplied trust level against the
// active enforcement mode (strict, permissive, audit_only), and records
// every decision through a best-effort audit emitter. On success the
// output trust level is propagated monotonically from the inputs.
//
// Usage:
//
//	tg, err := taintgate.New(taintgate.WithPolicy("policy.yaml"))
//	tg.RegisterRoles("browser.navigate",
//	    taintgate.RoleDecl{Param: "url", Role: taintgate.Control},
//	    taintgate.RoleDecl{Param: "body", Role: taintgate.Data},
//	)
//	guarded := tg.Wrap(navigate)
//	out, err := guarded(ctx, taintgate.Action{
//	    Name:    "browser.navigate",
//	    Params:  map[string]any{"url": target},
//	    Context: map[string]any{"taint": "untrusted"},
//	})
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/ppiankov/taintgate/sdk/go/taintgate.
package taintgate
