package audit

// Event kinds recorded in the audit log.
const (
	EventAudited    = "audited"
	EventPropagated = "propagated"
	EventBlocked    = "blocked"
)

// Entry is one line in the hash-chained JSONL audit log.
// All fields are scalars or structs (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp   string `json:"ts"`
	CallID      string `json:"call_id"`
	Event       string `json:"event"`
	Action      string `json:"action"`
	Param       string `json:"param,omitempty"`
	Role        string `json:"role,omitempty"`
	Level       string `json:"level,omitempty"`
	InputLevel  string `json:"input_level,omitempty"`
	OutputLevel string `json:"output_level,omitempty"`
	Mode        string `json:"mode,omitempty"`
	PolicyHash  string `json:"policy_hash,omitempty"`
	PrevHash    string `json:"prev_hash"`
}
