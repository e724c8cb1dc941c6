package model

// TaintContext is the normalized taint information extracted from an
// execution context. HasLevel=false means the caller supplied no taint
// information and enforcement is skipped entirely — a deliberate
// backward-compatibility escape hatch, not an error.
type TaintContext struct {
	Level    TaintLevel
	HasLevel bool
	Mode     PolicyMode // empty when the context did not name one
}

// ExtractContext normalizes a raw execution context into a TaintContext.
// Two shapes are recognized: a flat "taint" field, or a nested
// "taint_context" map with its own "taint" field. The flat field wins
// when both are present. "taint_policy" selects the enforcement mode.
func ExtractContext(ctx map[string]any) TaintContext {
	var tc TaintContext
	if ctx == nil {
		return tc
	}

	if lvl, ok := levelField(ctx["taint"]); ok {
		tc.Level = lvl
		tc.HasLevel = true
	} else if nested, ok := ctx["taint_context"].(map[string]any); ok {
		if lvl, ok := levelField(nested["taint"]); ok {
			tc.Level = lvl
			tc.HasLevel = true
		}
	}

	if m, ok := ctx["taint_policy"].(string); ok {
		tc.Mode = ParseMode(m, "")
	}

	return tc
}

// levelField coerces a raw context value into a TaintLevel.
func levelField(v any) (TaintLevel, bool) {
	switch l := v.(type) {
	case string:
		if l == "" {
			return "", false
		}
		return ParseLevel(l), true
	case TaintLevel:
		return ParseLevel(string(l)), true
	default:
		return "", false
	}
}
