package policy

import (
	"testing"

	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/roles"
)

func navigateRoles() *roles.RoleMap {
	return roles.NewRoleMap().
		Declare("url", model.RoleControl).
		Declare("method", model.RoleControl).
		Declare("body", model.RoleData)
}

func ctxWith(level model.TaintLevel) model.TaintContext {
	return model.TaintContext{Level: level, HasLevel: true}
}

func TestNoTaintContextSkipsEnforcement(t *testing.T) {
	res := Check(navigateRoles(), map[string]any{"url": "https://evil.test"},
		model.TaintContext{}, model.ModeStrict)

	if !res.Allowed() {
		t.Fatal("missing context must allow")
	}
	if res.Enforced {
		t.Fatal("missing context must not count as enforced")
	}
	if len(res.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(res.Events))
	}
}

func TestPermissiveBlocksUntrustedOnControl(t *testing.T) {
	res := Check(navigateRoles(),
		map[string]any{"url": "https://evil.test", "body": "hello"},
		ctxWith(model.Untrusted), model.ModePermissive)

	if res.Allowed() {
		t.Fatal("untrusted on control must block in permissive")
	}
	v := res.Violation
	if v.Param != "url" || v.Level != model.Untrusted || v.Role != model.RoleControl {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if len(res.Events) != 0 {
		t.Fatalf("blocked decision should carry no audited events, got %d", len(res.Events))
	}
}

func TestPermissiveAllowsUntrustedOnDataOnly(t *testing.T) {
	res := Check(navigateRoles(), map[string]any{"body": "<html>injected</html>"},
		ctxWith(model.Untrusted), model.ModePermissive)

	if !res.Allowed() {
		t.Fatal("untrusted touching only data params must pass")
	}
	if len(res.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(res.Events))
	}
}

func TestPermissiveAuditsDerivedOnEveryControl(t *testing.T) {
	res := Check(navigateRoles(),
		map[string]any{"url": "https://a.test", "method": "POST", "body": "x"},
		ctxWith(model.Derived), model.ModePermissive)

	if !res.Allowed() {
		t.Fatal("derived on control must pass in permissive")
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected one audited event per control param, got %d", len(res.Events))
	}
	if res.Events[0].Param != "url" || res.Events[1].Param != "method" {
		t.Fatalf("events out of declaration order: %+v", res.Events)
	}
	for _, ev := range res.Events {
		if ev.Level != model.Derived || ev.Role != model.RoleControl {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestStrictBlocksAnyNonTrustedOnControl(t *testing.T) {
	for _, level := range []model.TaintLevel{model.Derived, model.Untrusted, model.Hostile} {
		res := Check(navigateRoles(), map[string]any{"url": "https://a.test"},
			ctxWith(level), model.ModeStrict)
		if res.Allowed() {
			t.Errorf("strict must block %s on control", level)
		}
	}

	res := Check(navigateRoles(), map[string]any{"url": "https://a.test"},
		ctxWith(model.Trusted), model.ModeStrict)
	if !res.Allowed() {
		t.Fatal("strict must allow trusted")
	}
}

func TestStrictAllowsHostileOnDataOnly(t *testing.T) {
	res := Check(navigateRoles(), map[string]any{"body": "payload"},
		ctxWith(model.Hostile), model.ModeStrict)
	if !res.Allowed() {
		t.Fatal("strict only guards control params")
	}
}

func TestAuditOnlyNeverBlocks(t *testing.T) {
	for _, level := range []model.TaintLevel{model.Trusted, model.Derived, model.Untrusted, model.Hostile} {
		res := Check(navigateRoles(), map[string]any{"url": "https://a.test"},
			ctxWith(level), model.ModeAuditOnly)
		if !res.Allowed() {
			t.Errorf("audit_only must never block, blocked at %s", level)
		}
	}
}

func TestAuditOnlyEmitsOneEventPerWouldBeBlock(t *testing.T) {
	res := Check(navigateRoles(),
		map[string]any{"url": "https://a.test", "method": "POST"},
		ctxWith(model.Hostile), model.ModeAuditOnly)

	if len(res.Events) != 1 {
		t.Fatalf("expected exactly one audited event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if ev.Param != "url" || ev.Level != model.Hostile {
		t.Fatalf("unexpected event: %+v", ev)
	}

	// Derived would not block permissive, so audit_only stays silent.
	res = Check(navigateRoles(), map[string]any{"url": "https://a.test"},
		ctxWith(model.Derived), model.ModeAuditOnly)
	if len(res.Events) != 0 {
		t.Fatalf("derived should produce no audit_only events, got %d", len(res.Events))
	}
}

func TestContextModeOverridesDefault(t *testing.T) {
	tc := ctxWith(model.Untrusted)
	tc.Mode = model.ModeAuditOnly

	res := Check(navigateRoles(), map[string]any{"url": "https://a.test"}, tc, model.ModeStrict)
	if !res.Allowed() {
		t.Fatal("context audit_only must override strict default")
	}
	if res.Mode != model.ModeAuditOnly {
		t.Fatalf("Mode = %s, want audit_only", res.Mode)
	}
}

func TestEmptyModesFallBackToPermissive(t *testing.T) {
	res := Check(navigateRoles(), map[string]any{"url": "https://a.test"},
		ctxWith(model.Derived), "")
	if !res.Allowed() {
		t.Fatal("derived must pass under the permissive fallback")
	}
	if res.Mode != model.ModePermissive {
		t.Fatalf("Mode = %s, want permissive", res.Mode)
	}
}

func TestFirstControlInDeclarationOrderNamesViolation(t *testing.T) {
	rm := roles.NewRoleMap().
		Declare("zeta", model.RoleControl).
		Declare("alpha", model.RoleControl)

	res := Check(rm, map[string]any{"alpha": 1, "zeta": 2},
		ctxWith(model.Hostile), model.ModePermissive)

	if res.Allowed() {
		t.Fatal("expected block")
	}
	if res.Violation.Param != "zeta" {
		t.Fatalf("violation names %q, want declaration-first zeta", res.Violation.Param)
	}
}

func TestAbsentControlParamsDoNotTrigger(t *testing.T) {
	// url is declared control but not supplied in this call
	res := Check(navigateRoles(), map[string]any{"body": "x"},
		ctxWith(model.Hostile), model.ModeStrict)
	if !res.Allowed() {
		t.Fatal("declared-but-unsupplied control param must not block")
	}
}

func TestUnregisteredActionNeverBlocks(t *testing.T) {
	reg := roles.NewRegistry()
	res := Check(reg.RolesFor("unknown.action"),
		map[string]any{"whatever": "x"},
		ctxWith(model.Hostile), model.ModeStrict)
	if !res.Allowed() {
		t.Fatal("action without declared roles must pass (all params data)")
	}
}
