package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miseapp/mise/internal/llm"
	"github.com/miseapp/mise/internal/plan"
	"github.com/miseapp/mise/internal/store"
)

const planningTemperature = 0.3

const planningSystemPrompt = `You're a planning assistant that helps people organize their kitchen tasks efficiently. Your role is to understand what someone wants to do and create a clear, practical action plan.

Your plan should be returned as JSON with:
- "goal": What the person wants to accomplish
- "steps": The specific actions needed, each including:
  - "action": The function name to call
  - "parameters": What that function needs
  - "description": A natural, friendly explanation of what you're doing
  - "reason": Why this step makes sense for them
  - "estimated_cost": Any cost involved (0 if free)

Keep these principles in mind:
- Work with what they already have first (check their inventory, leftovers, etc.)
- Group similar tasks together to be more efficient
- Respect their preferences and dietary needs
- Sound like a helpful person, not a computer
- Focus on reducing waste and saving money

You'll get the person's current kitchen context next. Create a practical plan
that works for their situation. Respond with a valid JSON object only, no
markdown code blocks.`

// ContextStore is the slice of the persistence layer the planner reads
// when assembling a context snapshot.
type ContextStore interface {
	GetPreferences(userID string) (*store.Preferences, error)
	GetInventory(userID string) ([]store.InventoryItem, error)
	GetLeftovers(userID string) ([]store.Leftover, error)
	GetShoppingList(userID string) ([]store.ShoppingItem, error)
}

// ToolInfo describes one handler action the planner may schedule.
type ToolInfo struct {
	Name        string
	Description string
}

// Planner gathers a user's full context and asks the LLM to turn a
// request into a structured plan of handler invocations.
type Planner struct {
	LLM   llm.Generator
	Store ContextStore
}

func NewPlanner(generator llm.Generator, contextStore ContextStore) *Planner {
	return &Planner{LLM: generator, Store: contextStore}
}

// GatherContext fetches everything up front so the plan is made against
// complete information instead of piecemeal tool calls the LLM might
// forget to make. Each fetch fails independently: a broken field stays at
// its zero value and is recorded in FieldErrors.
func (p *Planner) GatherContext(userID string) *plan.AgentContext {
	ctx := &plan.AgentContext{
		UserID:      userID,
		FieldErrors: make(map[string]string),
	}

	var err error
	if ctx.Preferences, err = p.Store.GetPreferences(userID); err != nil {
		log.Printf("Failed to get preferences for %s: %v", userID, err)
		ctx.FieldErrors["preferences"] = err.Error()
	}
	if ctx.Inventory, err = p.Store.GetInventory(userID); err != nil {
		log.Printf("Failed to get inventory for %s: %v", userID, err)
		ctx.FieldErrors["inventory"] = err.Error()
	}
	if ctx.Leftovers, err = p.Store.GetLeftovers(userID); err != nil {
		log.Printf("Failed to get leftovers for %s: %v", userID, err)
		ctx.FieldErrors["leftovers"] = err.Error()
	}
	if ctx.ShoppingList, err = p.Store.GetShoppingList(userID); err != nil {
		log.Printf("Failed to get shopping list for %s: %v", userID, err)
		ctx.FieldErrors["shopping_list"] = err.Error()
	}

	ctx.GatheredAt = time.Now()
	return ctx
}

// CreatePlan asks the LLM for a structured plan. Any LLM failure or
// unparseable output yields an empty-step failed plan with diagnostics in
// the context map, never an error.
func (p *Planner) CreatePlan(ctx context.Context, userMessage string, agentCtx *plan.AgentContext, tools []ToolInfo) *plan.ActionPlan {
	prompt := fmt.Sprintf(`%s

## USER REQUEST
%s

## YOUR TASK
Create an action plan to fulfill this request. Remember:
- Use conversational, friendly language in descriptions
- Batch similar operations together
- Consider what the user already has before suggesting purchases
- Respond with a valid JSON object only, no markdown code blocks`,
		buildContextPrompt(agentCtx, tools), userMessage)

	response, err := p.LLM.Generate(ctx, planningSystemPrompt, prompt, planningTemperature)
	if err != nil {
		log.Printf("Failed to create plan: %v", err)
		failed := plan.New(userMessage)
		failed.Status = plan.StatusFailed
		failed.Context = map[string]string{"error": err.Error()}
		return failed
	}

	return p.parsePlanResponse(response, userMessage, agentCtx)
}

// parsePlanResponse converts LLM JSON into an ActionPlan, filling
// defaults for sparse steps. A structurally invalid top-level shape is
// rejected outright rather than partially accepted.
func (p *Planner) parsePlanResponse(response, goal string, agentCtx *plan.AgentContext) *plan.ActionPlan {
	var parsed struct {
		Goal  string `json:"goal"`
		Steps []struct {
			Action        string         `json:"action"`
			Parameters    map[string]any `json:"parameters"`
			Description   string         `json:"description"`
			Reason        string         `json:"reason"`
			EstimatedCost float64        `json:"estimated_cost"`
		} `json:"steps"`
	}

	jsonText := stripCodeFences(response)
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		log.Printf("Failed to parse plan JSON: %v", err)
		failed := plan.New(goal)
		failed.Status = plan.StatusFailed
		failed.Context = map[string]string{
			"error":        "failed to parse plan",
			"raw_response": truncate(response, 500),
		}
		return failed
	}

	result := plan.New(goal)
	if parsed.Goal != "" {
		result.Goal = parsed.Goal
	}
	result.Context = agentCtx.Summary()

	for _, s := range parsed.Steps {
		step := &plan.Step{
			Action:        s.Action,
			Parameters:    s.Parameters,
			Description:   s.Description,
			Reason:        s.Reason,
			EstimatedCost: s.EstimatedCost,
		}
		if step.Action == "" {
			step.Action = "unknown"
		}
		if step.Parameters == nil {
			step.Parameters = map[string]any{}
		}
		if step.Description == "" {
			step.Description = "Perform action"
		}
		if step.EstimatedCost < 0 {
			step.EstimatedCost = 0
		}
		result.AddStep(step)
	}

	log.Printf("Created plan with %d steps", len(result.Steps))
	return result
}

// stripCodeFences removes markdown code fence wrappers the LLM sometimes
// adds despite instructions.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	var kept []string
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(line, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// buildContextPrompt renders the context snapshot for the LLM, capping
// list lengths to avoid unbounded prompt growth.
func buildContextPrompt(agentCtx *plan.AgentContext, tools []ToolInfo) string {
	var b strings.Builder
	b.WriteString("## CURRENT CONTEXT\n\n")

	if prefs := agentCtx.Preferences; prefs != nil {
		b.WriteString("### User Preferences\n")
		if len(prefs.DietaryRestrictions) > 0 {
			fmt.Fprintf(&b, "- Dietary restrictions: %s\n", strings.Join(prefs.DietaryRestrictions, ", "))
		}
		if len(prefs.HealthGoals) > 0 {
			fmt.Fprintf(&b, "- Health goals: %s\n", strings.Join(prefs.HealthGoals, ", "))
		}
		if prefs.FamilySize > 0 {
			fmt.Fprintf(&b, "- Family size: %d\n", prefs.FamilySize)
		}
		if len(prefs.CuisinePreferences) > 0 {
			fmt.Fprintf(&b, "- Favorite cuisines: %s\n", strings.Join(prefs.CuisinePreferences, ", "))
		}
		b.WriteString("\n")
	}

	if len(agentCtx.Inventory) > 0 {
		b.WriteString("### Current Inventory\n")
		for i, item := range agentCtx.Inventory {
			if i >= 20 {
				fmt.Fprintf(&b, "... and %d more items\n", len(agentCtx.Inventory)-20)
				break
			}
			fmt.Fprintf(&b, "- %s: %g %s\n", item.ItemName, item.Quantity, item.Unit)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("### Current Inventory\nNo items in inventory.\n\n")
	}

	if len(agentCtx.Leftovers) > 0 {
		b.WriteString("### Leftovers (use these first!)\n")
		for i, l := range agentCtx.Leftovers {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s: %g servings\n", l.MealName, l.Servings)
		}
		b.WriteString("\n")
	}

	if len(agentCtx.ShoppingList) > 0 {
		b.WriteString("### Current Shopping List\n")
		for i, item := range agentCtx.ShoppingList {
			if i >= 20 {
				break
			}
			fmt.Fprintf(&b, "- %s: %g %s\n", item.Item, item.Quantity, item.Unit)
		}
		b.WriteString("\n")
	}

	if agentCtx.WalletBalance != nil {
		b.WriteString("### Budget\n")
		fmt.Fprintf(&b, "- Wallet balance: $%.2f\n", *agentCtx.WalletBalance)
		fmt.Fprintf(&b, "- Daily spending limit: $%.2f\n", agentCtx.SpendingLimitDaily)
		fmt.Fprintf(&b, "- Spent today: $%.2f\n", agentCtx.SpentToday)
		fmt.Fprintf(&b, "- Remaining today: $%.2f\n", agentCtx.RemainingBudget())
		b.WriteString("\n")
	}

	b.WriteString("### Available Actions\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- `%s`: %s\n", t.Name, truncate(t.Description, 100))
	}
	b.WriteString("\n")

	return b.String()
}
