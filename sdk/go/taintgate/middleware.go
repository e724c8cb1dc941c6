package taintgate

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Header names the middleware maps into a taint context.
const (
	HeaderTaintLevel  = "X-Taint-Level"
	HeaderTaintPolicy = "X-Taint-Policy"
)

// Middleware returns an http.Handler that runs a taint check on each
// request before passing to the next handler. The request's taint
// context comes from the X-Taint-Level and X-Taint-Policy headers;
// requests without X-Taint-Level pass through unenforced. Blocked
// requests receive a 403 with a JSON body naming the violation.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := actionFromRequest(r)
		result := c.Check(action)

		if !result.Allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"blocked": true,
				"param":   result.Violation.Param,
				"level":   string(result.Violation.Level),
				"role":    string(result.Violation.Role),
				"mode":    string(result.Mode),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// actionFromRequest maps an HTTP request to an SDK Action. Register
// roles for "http.request" to mark which of method/path/query are
// control parameters.
func actionFromRequest(r *http.Request) Action {
	ctx := map[string]any{}
	if lvl := r.Header.Get(HeaderTaintLevel); lvl != "" {
		ctx["taint"] = lvl
	}
	if mode := r.Header.Get(HeaderTaintPolicy); mode != "" {
		ctx["taint_policy"] = mode
	}

	params := map[string]any{
		"method": strings.ToLower(r.Method),
		"path":   r.URL.Path,
	}
	if q := r.URL.RawQuery; q != "" {
		params["query"] = q
	}

	return Action{
		Name:    "http.request",
		Params:  params,
		Context: ctx,
	}
}
