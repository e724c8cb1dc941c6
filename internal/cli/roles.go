package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taintgate/internal/policy"
)

var (
	rolesPolicy string
	rolesFormat string
)

func init() {
	rootCmd.AddCommand(rolesCmd)
	rolesCmd.Flags().StringVar(&rolesPolicy, "policy", "", "Path to policy YAML (default ~/.taintgate/policy.yaml)")
	rolesCmd.Flags().StringVarP(&rolesFormat, "format", "f", "text", "Output format (text|json)")
}

var rolesCmd = &cobra.Command{
	Use:   "roles <action>",
	Short: "Show declared parameter roles for an action",
	Long:  "Prints the parameter roles declared for an action in the policy file.\nParameters not listed default to data and never block.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoles,
}

func runRoles(cmd *cobra.Command, args []string) error {
	cfg, _, err := policy.LoadConfigWithHash(rolesPolicy)
	if err != nil {
		return fmt.Errorf("failed to load policy config: %w", err)
	}
	registry := cfg.BuildRegistry()

	action := args[0]
	rm := registry.RolesFor(action)
	registered := registry.IsRegistered(action)

	if rolesFormat == "json" {
		type roleItem struct {
			Param string `json:"param"`
			Role  string `json:"role"`
		}
		report := struct {
			Action     string     `json:"action"`
			Registered bool       `json:"registered"`
			Roles      []roleItem `json:"roles"`
		}{Action: action, Registered: registered, Roles: []roleItem{}}
		for _, param := range rm.Params() {
			report.Roles = append(report.Roles, roleItem{Param: param, Role: string(rm.RoleFor(param))})
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if !registered {
		fmt.Printf("%s: not declared (all parameters default to data)\n", action)
		return nil
	}
	fmt.Printf("%s:\n", action)
	for _, param := range rm.Params() {
		fmt.Printf("  %-20s %s\n", param, rm.RoleFor(param))
	}
	return nil
}
