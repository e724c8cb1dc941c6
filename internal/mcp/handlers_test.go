package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPolicy = `
mode: permissive
actions:
  browser.navigate:
    roles:
      - param: url
        role: control
      - param: body
        role: data
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(testPolicy), 0644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	srv, err := New(Config{PolicyPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, path
}

func TestHandleCheckBlocksUntrustedControl(t *testing.T) {
	srv, _ := newTestServer(t)

	result, out, err := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://evil.test"},
		Taint:  "untrusted",
	})
	if err != nil {
		t.Fatalf("handleCheck: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("blocked check should flag the tool result as error")
	}
	if out.Allowed {
		t.Fatal("expected blocked")
	}
	if out.Param != "url" || out.Level != "untrusted" || out.Role != "control" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestHandleCheckAllowsDataOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	result, out, err := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"body": "payload"},
		Taint:  "hostile",
	})
	if err != nil {
		t.Fatalf("handleCheck: %v", err)
	}
	if result != nil {
		t.Fatal("allowed check should not flag an error result")
	}
	if !out.Allowed || !out.Enforced {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestHandleCheckWithoutTaintSkipsEnforcement(t *testing.T) {
	srv, _ := newTestServer(t)

	_, out, err := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://a.test"},
	})
	if err != nil {
		t.Fatalf("handleCheck: %v", err)
	}
	if !out.Allowed || out.Enforced {
		t.Fatalf("expected unenforced pass, got %+v", out)
	}
}

func TestHandleCheckModeOverride(t *testing.T) {
	srv, _ := newTestServer(t)

	_, out, err := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://a.test"},
		Taint:  "hostile",
		Mode:   "audit_only",
	})
	if err != nil {
		t.Fatalf("handleCheck: %v", err)
	}
	if !out.Allowed {
		t.Fatal("audit_only must not block")
	}
	if out.Audited != 1 {
		t.Fatalf("audited = %d, want 1", out.Audited)
	}
}

func TestHandlePropagate(t *testing.T) {
	srv, _ := newTestServer(t)

	_, out, err := srv.handlePropagate(context.Background(), nil, PropagateInput{
		Levels: []string{"trusted", "untrusted", "derived"},
	})
	if err != nil {
		t.Fatalf("handlePropagate: %v", err)
	}
	if out.Output != "untrusted" {
		t.Fatalf("output = %s, want untrusted", out.Output)
	}

	_, out, err = srv.handlePropagate(context.Background(), nil, PropagateInput{})
	if err != nil {
		t.Fatalf("handlePropagate: %v", err)
	}
	if out.Output != "trusted" {
		t.Fatalf("empty propagate = %s, want trusted", out.Output)
	}
}

func TestHandleRoles(t *testing.T) {
	srv, _ := newTestServer(t)

	_, out, err := srv.handleRoles(context.Background(), nil, RolesInput{Action: "browser.navigate"})
	if err != nil {
		t.Fatalf("handleRoles: %v", err)
	}
	if !out.Registered {
		t.Fatal("browser.navigate should be registered")
	}
	if len(out.Roles) != 2 || out.Roles[0].Param != "url" || out.Roles[0].Role != "control" {
		t.Fatalf("unexpected roles: %+v", out.Roles)
	}

	_, out, err = srv.handleRoles(context.Background(), nil, RolesInput{Action: "never.declared"})
	if err != nil {
		t.Fatalf("handleRoles: %v", err)
	}
	if out.Registered || len(out.Roles) != 0 {
		t.Fatalf("unknown action should be unregistered and empty, got %+v", out)
	}
}

func TestReloadPolicySwapsMode(t *testing.T) {
	srv, path := newTestServer(t)

	// Derived on control passes in permissive.
	_, out, _ := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://a.test"},
		Taint:  "derived",
	})
	if !out.Allowed {
		t.Fatal("derived should pass before reload")
	}

	strictPolicy := strings.Replace(testPolicy, "mode: permissive", "mode: strict", 1)
	if err := os.WriteFile(path, []byte(strictPolicy), 0644); err != nil {
		t.Fatalf("rewrite policy: %v", err)
	}
	if err := srv.ReloadPolicy(); err != nil {
		t.Fatalf("ReloadPolicy: %v", err)
	}

	_, out, _ = srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://a.test"},
		Taint:  "derived",
	})
	if out.Allowed {
		t.Fatal("derived should block in strict after reload")
	}
}

func TestReloadPolicyMissingFileFallsBackToDefaults(t *testing.T) {
	srv, path := newTestServer(t)
	os.Remove(path)

	if err := srv.ReloadPolicy(); err != nil {
		t.Fatalf("ReloadPolicy after delete: %v", err)
	}

	// Defaults declare no actions; everything is data.
	_, out, _ := srv.handleCheck(context.Background(), nil, CheckInput{
		Action: "browser.navigate",
		Params: map[string]any{"url": "https://a.test"},
		Taint:  "hostile",
	})
	if !out.Allowed {
		t.Fatal("default policy should allow (no declared roles)")
	}
}
