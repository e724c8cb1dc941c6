// Package roles holds per-action parameter role declarations and the
// registry that serves them at check time.
package roles

import "github.com/ppiankov/taintgate/internal/model"

// RoleMap is a declaration-ordered mapping from parameter name to role.
// Declared once per action type and never mutated afterwards. Lookups
// never fail: a parameter absent from the map is data by definition.
type RoleMap struct {
	order []string
	roles map[string]model.ParamRole
}

// NewRoleMap creates an empty RoleMap.
func NewRoleMap() *RoleMap {
	return &RoleMap{roles: make(map[string]model.ParamRole)}
}

// Declare records a parameter's role. Redeclaring a parameter updates
// the role but keeps its original position. Returns the map for chaining.
func (m *RoleMap) Declare(param string, role model.ParamRole) *RoleMap {
	if _, seen := m.roles[param]; !seen {
		m.order = append(m.order, param)
	}
	m.roles[param] = role
	return m
}

// RoleFor returns the declared role for a parameter, or data when the
// parameter is undeclared. Nil-safe.
func (m *RoleMap) RoleFor(param string) model.ParamRole {
	if m == nil {
		return model.RoleData
	}
	if r, ok := m.roles[param]; ok {
		return r
	}
	return model.RoleData
}

// Params returns the declared parameter names in declaration order.
func (m *RoleMap) Params() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of declared parameters.
func (m *RoleMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}
