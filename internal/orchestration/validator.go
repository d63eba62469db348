package orchestration

import (
	_ "embed"
	"fmt"
	"log"
	"strings"

	"github.com/miseapp/mise/internal/plan"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// ValidationRules are the static tables driving the safety and
// preference checks.
type ValidationRules struct {
	ApprovalKeywords     []string            `yaml:"approval_keywords"`
	BulkRemovalLimit     int                 `yaml:"bulk_removal_limit"`
	RestrictionConflicts map[string][]string `yaml:"restriction_conflicts"`
}

// ValidationResult is the merged outcome of all validator checks.
// Errors block execution; warnings inform but never block.
type ValidationResult struct {
	IsValid          bool
	RequiresApproval bool
	ApprovalReason   string
	Warnings         []string
	Errors           []string
}

// Message renders the result for the user.
func (v ValidationResult) Message() string {
	var parts []string
	if len(v.Errors) > 0 {
		parts = append(parts, "I found some issues with this plan:")
		for _, e := range v.Errors {
			parts = append(parts, "  • "+e)
		}
	}
	if len(v.Warnings) > 0 {
		parts = append(parts, "A few things to note:")
		for _, w := range v.Warnings {
			parts = append(parts, "  • "+w)
		}
	}
	if v.RequiresApproval && v.ApprovalReason != "" {
		parts = append(parts, "\nI need your approval: "+v.ApprovalReason)
	}
	if len(parts) == 0 {
		return "Plan looks good!"
	}
	return strings.Join(parts, "\n")
}

// Validator applies budget, safety, duplicate, and preference checks to
// a plan and decides whether it can run, needs approval, or must fail.
type Validator struct {
	Rules ValidationRules
}

func NewValidator() *Validator {
	var rules ValidationRules
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		// The asset is compiled in, so this only fires on a bad edit.
		log.Fatalf("failed to parse embedded validation rules: %v", err)
	}
	return &Validator{Rules: rules}
}

type checkResult struct {
	requiresApproval bool
	reason           string
	warnings         []string
	errors           []string
}

// ValidatePlan runs every check, merges the outputs, and updates the
// plan's status: errors fail it, approval requests park it, otherwise it
// is approved.
func (v *Validator) ValidatePlan(p *plan.ActionPlan, agentCtx *plan.AgentContext) ValidationResult {
	result := ValidationResult{}

	checks := []checkResult{
		v.checkBudget(p, agentCtx),
		v.checkSafety(p),
		v.checkDuplicates(p, agentCtx),
		v.checkPreferences(p, agentCtx),
	}

	for _, c := range checks {
		result.Warnings = append(result.Warnings, c.warnings...)
		result.Errors = append(result.Errors, c.errors...)
		if c.requiresApproval {
			result.RequiresApproval = true
			if result.ApprovalReason == "" {
				result.ApprovalReason = c.reason
			} else {
				result.ApprovalReason += " Also, " + c.reason
			}
		}
	}

	switch {
	case len(result.Errors) > 0:
		p.Status = plan.StatusFailed
		result.IsValid = false
	case result.RequiresApproval:
		p.Status = plan.StatusAwaitingApproval
		p.RequiresApproval = true
		p.ApprovalReason = result.ApprovalReason
		result.IsValid = true
	default:
		p.Status = plan.StatusApproved
		result.IsValid = true
	}

	return result
}

// checkBudget is a no-op while wallet fields stay unset, but the rules
// are live the moment a payments feature starts populating them.
func (v *Validator) checkBudget(p *plan.ActionPlan, agentCtx *plan.AgentContext) checkResult {
	var c checkResult

	totalCost := p.TotalEstimatedCost()
	if totalCost <= 0 {
		return c
	}

	remaining := agentCtx.RemainingBudget()
	if totalCost > remaining {
		if totalCost > agentCtx.SpendingLimitDaily {
			c.requiresApproval = true
			c.reason = fmt.Sprintf("this will cost $%.2f, which is over your $%.2f daily limit.",
				totalCost, agentCtx.SpendingLimitDaily)
		} else {
			c.warnings = append(c.warnings, fmt.Sprintf(
				"This purchase ($%.2f) will use most of your remaining budget for today ($%.2f)",
				totalCost, remaining))
		}
	}

	if agentCtx.WalletBalance != nil && totalCost > *agentCtx.WalletBalance {
		c.errors = append(c.errors, fmt.Sprintf(
			"Insufficient funds: need $%.2f but only have $%.2f",
			totalCost, *agentCtx.WalletBalance))
	}

	return c
}

func (v *Validator) checkSafety(p *plan.ActionPlan) checkResult {
	var c checkResult

	for _, step := range p.Steps {
		action := strings.ToLower(step.Action)
		description := strings.ToLower(step.Description)

		if strings.Contains(action, "delete") || strings.Contains(action, "remove") {
			count := stepItemCount(step)
			if count > v.Rules.BulkRemovalLimit {
				c.requiresApproval = true
				c.reason = fmt.Sprintf("this will remove %d items at once.", count)
				c.warnings = append(c.warnings, fmt.Sprintf("Bulk removal: %d items will be deleted", count))
			}
		}

		for _, keyword := range v.Rules.ApprovalKeywords {
			if strings.Contains(description, keyword) {
				c.requiresApproval = true
				c.reason = fmt.Sprintf("this action involves '%s' which requires confirmation.", keyword)
				break
			}
		}
	}

	return c
}

func (v *Validator) checkDuplicates(p *plan.ActionPlan, agentCtx *plan.AgentContext) checkResult {
	var c checkResult

	existing := make(map[string]bool, len(agentCtx.ShoppingList))
	for _, item := range agentCtx.ShoppingList {
		existing[strings.ToLower(strings.TrimSpace(item.Item))] = true
	}

	for _, step := range p.Steps {
		if step.Action != "addToShoppingList" && step.Action != "createShoppingListItems" {
			continue
		}
		for _, name := range stepItemNames(step) {
			if existing[name] {
				c.warnings = append(c.warnings, fmt.Sprintf("'%s' is already on your shopping list", name))
			}
		}
	}

	return c
}

func (v *Validator) checkPreferences(p *plan.ActionPlan, agentCtx *plan.AgentContext) checkResult {
	var c checkResult

	if agentCtx.Preferences == nil || len(agentCtx.Preferences.DietaryRestrictions) == 0 {
		return c
	}

	for _, step := range p.Steps {
		switch step.Action {
		case "addToShoppingList", "createShoppingListItems", "suggestMeal":
		default:
			continue
		}

		names := stepItemNames(step)
		if len(names) == 0 {
			names = stepIngredients(step)
		}

		for _, name := range names {
			for _, restriction := range agentCtx.Preferences.DietaryRestrictions {
				conflicts, ok := v.Rules.RestrictionConflicts[strings.ToLower(restriction)]
				if !ok {
					continue
				}
				for _, conflict := range conflicts {
					if strings.Contains(name, conflict) {
						c.warnings = append(c.warnings, fmt.Sprintf(
							"'%s' might not be %s (you listed '%s' as a dietary restriction)",
							name, strings.ToLower(restriction), strings.ToLower(restriction)))
						break
					}
				}
			}
		}
	}

	return c
}

// ApprovePlan marks a plan approved by the user.
func (v *Validator) ApprovePlan(p *plan.ActionPlan) {
	p.Status = plan.StatusApproved
	p.RequiresApproval = false
	log.Printf("Plan %s approved", p.ID)
}

// RejectPlan marks a plan cancelled.
func (v *Validator) RejectPlan(p *plan.ActionPlan, reason string) {
	p.Status = plan.StatusCancelled
	log.Printf("Plan %s rejected: %s", p.ID, reason)
}

// stepItemCount counts entries in the step's items or item_names
// parameter, whichever is present.
func stepItemCount(step *plan.Step) int {
	for _, key := range []string{"items", "item_names"} {
		if raw, ok := step.Parameters[key]; ok {
			if list, ok := raw.([]any); ok {
				return len(list)
			}
		}
	}
	return 0
}

// stepItemNames extracts normalized item names from a step's items
// parameter, tolerating both object and bare-string entries.
func stepItemNames(step *plan.Step) []string {
	raw, ok := step.Parameters["items"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var names []string
	for _, entry := range list {
		switch item := entry.(type) {
		case map[string]any:
			for _, key := range []string{"item", "name", "item_name"} {
				if name, ok := item[key].(string); ok && name != "" {
					names = append(names, strings.ToLower(strings.TrimSpace(name)))
					break
				}
			}
		case string:
			names = append(names, strings.ToLower(strings.TrimSpace(item)))
		}
	}
	return names
}

func stepIngredients(step *plan.Step) []string {
	raw, ok := step.Parameters["ingredients"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			names = append(names, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	return names
}
