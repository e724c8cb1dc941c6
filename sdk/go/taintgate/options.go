package taintgate

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	policyPath   string
	auditLogPath string
	emitter      Emitter
	mode         PolicyMode
}

// WithPolicy sets the path to a policy YAML file.
func WithPolicy(path string) Option {
	return func(c *clientConfig) { c.policyPath = path }
}

// WithAuditLog sets the hash-chained audit log path, overriding the
// policy file's audit_log field.
func WithAuditLog(path string) Option {
	return func(c *clientConfig) { c.auditLogPath = path }
}

// WithEmitter replaces the audit sink. Takes precedence over any audit
// log path.
func WithEmitter(e Emitter) Option {
	return func(c *clientConfig) { c.emitter = e }
}

// WithMode overrides the policy file's default enforcement mode. A mode
// named in the execution context still wins.
func WithMode(mode PolicyMode) Option {
	return func(c *clientConfig) { c.mode = mode }
}

// WrapOption configures a single Wrap call.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	mode PolicyMode
}

// WrapWithMode sets the enforcement mode used when the execution
// context names none, for this wrap only.
func WrapWithMode(mode PolicyMode) WrapOption {
	return func(w *wrapConfig) { w.mode = mode }
}
