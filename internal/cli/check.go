package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taintgate/internal/audit"
	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/policy"
	"github.com/ppiankov/taintgate/internal/tracer"
)

var (
	checkAction string
	checkParams []string
	checkTaint  string
	checkMode   string
	checkPolicy string
	checkFormat string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkAction, "action", "", "Action identity, e.g. browser.navigate (required)")
	checkCmd.Flags().StringArrayVarP(&checkParams, "param", "p", nil, "Parameter as name=value (repeatable)")
	checkCmd.Flags().StringVar(&checkTaint, "taint", "", "Taint level of the inputs (trusted|derived|untrusted|hostile)")
	checkCmd.Flags().StringVar(&checkMode, "mode", "", "Enforcement mode override (permissive|audit_only|strict)")
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Path to policy YAML (default ~/.taintgate/policy.yaml)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("action")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one taint policy decision without executing anything",
	Long: "Evaluates whether an action's parameters may be driven by inputs at\n" +
		"the given taint level, under the declared parameter roles.\n\n" +
		"Exit code 0 if allowed, 77 if blocked.\n" +
		"Omitting --taint skips enforcement entirely (no taint context).",
	RunE: runCheck,
}

// checkReport is the JSON shape of one decision.
type checkReport struct {
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
	Enforced bool   `json:"enforced"`
	Mode     string `json:"mode,omitempty"`
	Param    string `json:"param,omitempty"`
	Level    string `json:"level,omitempty"`
	Role     string `json:"role,omitempty"`
	Audited  int    `json:"audited_events"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, policyHash, err := policy.LoadConfigWithHash(checkPolicy)
	if err != nil {
		return fmt.Errorf("failed to load policy config: %w", err)
	}
	registry := cfg.BuildRegistry()

	params, err := parseParams(checkParams)
	if err != nil {
		return err
	}

	callCtx := map[string]any{}
	if checkTaint != "" {
		callCtx["taint"] = checkTaint
	}
	if checkMode != "" {
		callCtx["taint_policy"] = checkMode
	}
	tc := model.ExtractContext(callCtx)

	result := policy.Check(registry.RolesFor(checkAction), params, tc, cfg.DefaultMode())

	emitAudited(cfg, policyHash, checkAction, result)

	report := checkReport{
		Action:   checkAction,
		Allowed:  result.Allowed(),
		Enforced: result.Enforced,
		Audited:  len(result.Events),
	}
	if result.Enforced {
		report.Mode = string(result.Mode)
	}
	if v := result.Violation; v != nil {
		report.Param = v.Param
		report.Level = string(v.Level)
		report.Role = string(v.Role)
	}

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printCheckText(report)
	}

	if !report.Allowed {
		os.Exit(77) // EX_NOPERM
	}
	return nil
}

func printCheckText(r checkReport) {
	if !r.Enforced {
		fmt.Printf("PASS %s (no taint context, enforcement skipped)\n", r.Action)
		return
	}
	if r.Allowed {
		fmt.Printf("ALLOW %s (mode=%s", r.Action, r.Mode)
		if r.Audited > 0 {
			fmt.Printf(", audited=%d", r.Audited)
		}
		fmt.Println(")")
		return
	}
	fmt.Printf("BLOCK %s: %s parameter %q carries %s taint (mode=%s)\n",
		r.Action, r.Role, r.Param, r.Level, r.Mode)
}

// emitAudited writes the decision's audited events to the configured
// audit log. Log trouble never changes the decision.
func emitAudited(cfg *policy.Config, policyHash, action string, result policy.CheckResult) {
	if len(result.Events) == 0 || cfg.AuditLog == "" {
		return
	}
	log, err := audit.Open(cfg.AuditLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: failed to open log: %v\n", err)
		return
	}
	defer log.Close()

	emitter := audit.NewLogEmitter(log)
	callID := tracer.NewCallID()
	for _, ev := range result.Events {
		emitter.Audited(audit.Record{
			CallID:     callID,
			Action:     action,
			Param:      ev.Param,
			Role:       ev.Role,
			Level:      ev.Level,
			Mode:       result.Mode,
			PolicyHash: policyHash,
		})
	}
}

// parseParams splits repeated name=value flags into a parameter map.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
