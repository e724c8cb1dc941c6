package model

// TaintLevel classifies the provenance of data feeding an action,
// ordered by increasing risk.
type TaintLevel string

const (
	Trusted   TaintLevel = "trusted"
	Derived   TaintLevel = "derived"
	Untrusted TaintLevel = "untrusted"
	Hostile   TaintLevel = "hostile"
)

// LevelRank maps taint levels to comparable integers for monotonic escalation.
var LevelRank = map[TaintLevel]int{
	Trusted:   0,
	Derived:   1,
	Untrusted: 2,
	Hostile:   3,
}

// ParseLevel maps a string to a TaintLevel. Fail-closed: an unknown
// non-empty value is treated as hostile. A garbled provenance claim is
// not the same as no claim; only true absence skips enforcement.
func ParseLevel(s string) TaintLevel {
	switch TaintLevel(s) {
	case Trusted, Derived, Untrusted, Hostile:
		return TaintLevel(s)
	default:
		return Hostile
	}
}

// ParamRole classifies what a parameter influences: control parameters
// decide what an action does, data parameters only its content.
type ParamRole string

const (
	RoleControl ParamRole = "control"
	RoleData    ParamRole = "data"
)

// ParseRole maps a string to a ParamRole. Fail-closed: unknown → control.
func ParseRole(s string) ParamRole {
	if ParamRole(s) == RoleData {
		return RoleData
	}
	return RoleControl
}

// PolicyMode selects how a taint violation is handled.
type PolicyMode string

const (
	ModePermissive PolicyMode = "permissive"
	ModeAuditOnly  PolicyMode = "audit_only"
	ModeStrict     PolicyMode = "strict"
)

// ParseMode maps a string to a PolicyMode. An empty value returns the
// supplied fallback; an unknown value fails closed to strict.
func ParseMode(s string, fallback PolicyMode) PolicyMode {
	switch PolicyMode(s) {
	case ModePermissive, ModeAuditOnly, ModeStrict:
		return PolicyMode(s)
	case "":
		return fallback
	default:
		return ModeStrict
	}
}

// Violation identifies the parameter whose role/trust combination is
// disallowed under the active mode.
type Violation struct {
	Param string     `json:"param"`
	Level TaintLevel `json:"level"`
	Role  ParamRole  `json:"role"`
}
