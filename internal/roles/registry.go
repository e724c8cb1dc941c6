package roles

// Registry maps action identities to their role maps. It is populated
// at action-definition time and read-only afterwards, so concurrent
// lookups need no synchronization.
type Registry struct {
	actions map[string]*RoleMap
}

var emptyRoleMap = NewRoleMap()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*RoleMap)}
}

// Register records an action's role map. Must complete before the
// registry is shared across goroutines.
func (r *Registry) Register(action string, rm *RoleMap) {
	if rm == nil {
		rm = emptyRoleMap
	}
	r.actions[action] = rm
}

// RolesFor returns the role map for an action. An action that declared
// no roles yields an empty map: every parameter is treated as data.
func (r *Registry) RolesFor(action string) *RoleMap {
	if r == nil {
		return emptyRoleMap
	}
	if rm, ok := r.actions[action]; ok {
		return rm
	}
	return emptyRoleMap
}

// IsRegistered returns true if the action declared a role map.
func (r *Registry) IsRegistered(action string) bool {
	if r == nil {
		return false
	}
	_, ok := r.actions[action]
	return ok
}
