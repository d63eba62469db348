package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/miseapp/mise/internal/plan"
	"github.com/miseapp/mise/internal/store"
)

// fakeGenerator replays canned responses and records prompts.
type fakeGenerator struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

// brokenStore fails every read, for degraded-context behavior.
type brokenStore struct{}

func (brokenStore) GetPreferences(string) (*store.Preferences, error) {
	return nil, errors.New("db locked")
}
func (brokenStore) GetInventory(string) ([]store.InventoryItem, error) {
	return nil, errors.New("db locked")
}
func (brokenStore) GetLeftovers(string) ([]store.Leftover, error) {
	return nil, errors.New("db locked")
}
func (brokenStore) GetShoppingList(string) ([]store.ShoppingItem, error) {
	return nil, errors.New("db locked")
}

// emptyStore returns zero values for everything.
type emptyStore struct{}

func (emptyStore) GetPreferences(string) (*store.Preferences, error) { return nil, nil }
func (emptyStore) GetInventory(string) ([]store.InventoryItem, error) { return nil, nil }
func (emptyStore) GetLeftovers(string) ([]store.Leftover, error) { return nil, nil }
func (emptyStore) GetShoppingList(string) ([]store.ShoppingItem, error) { return nil, nil }

const validPlanJSON = `{
	"goal": "add groceries",
	"steps": [
		{
			"action": "addToShoppingList",
			"parameters": {"items": [{"item": "milk", "quantity": 1}]},
			"description": "Add milk to your shopping list",
			"reason": "you asked for it",
			"estimated_cost": 0
		},
		{
			"action": "",
			"parameters": null,
			"description": "",
			"estimated_cost": -5
		}
	]
}`

func TestPlanner_CreatePlanParsesResponse(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n" + validPlanJSON + "\n```"}}
	p := NewPlanner(gen, emptyStore{})

	agentCtx := p.GatherContext("u1")
	result := p.CreatePlan(context.Background(), "add milk", agentCtx, []ToolInfo{{Name: "addToShoppingList", Description: "adds items"}})

	if result.Goal != "add groceries" {
		t.Errorf("Expected goal from response, got %q", result.Goal)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Action != "addToShoppingList" {
		t.Errorf("Unexpected action: %s", result.Steps[0].Action)
	}

	// Sparse steps get defaults instead of being dropped.
	second := result.Steps[1]
	if second.Action != "unknown" || second.Description != "Perform action" {
		t.Errorf("Defaults not applied: action=%q description=%q", second.Action, second.Description)
	}
	if second.Parameters == nil || second.EstimatedCost != 0 {
		t.Errorf("Defaults not applied: params=%v cost=%g", second.Parameters, second.EstimatedCost)
	}

	// The prompt must advertise the available actions.
	if !strings.Contains(gen.prompts[0], "addToShoppingList") {
		t.Errorf("Prompt is missing the tool list")
	}
}

func TestPlanner_MalformedResponseFailsPlan(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"sorry, I can't help with that"}}
	p := NewPlanner(gen, emptyStore{})

	result := p.CreatePlan(context.Background(), "add milk", p.GatherContext("u1"), nil)
	if result.Status != plan.StatusFailed {
		t.Fatalf("Expected failed plan, got %s", result.Status)
	}
	if len(result.Steps) != 0 {
		t.Errorf("Failed plan should have no steps, got %d", len(result.Steps))
	}
	if result.Context["error"] == "" {
		t.Errorf("Expected diagnostic in plan context")
	}
}

func TestPlanner_GeneratorErrorFailsPlan(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream timeout")}
	p := NewPlanner(gen, emptyStore{})

	result := p.CreatePlan(context.Background(), "add milk", p.GatherContext("u1"), nil)
	if result.Status != plan.StatusFailed {
		t.Fatalf("Expected failed plan, got %s", result.Status)
	}
	if !strings.Contains(result.Context["error"], "upstream timeout") {
		t.Errorf("Expected error detail, got %v", result.Context)
	}
}

func TestPlanner_GatherContextDegradesPerField(t *testing.T) {
	p := NewPlanner(&fakeGenerator{}, brokenStore{})

	agentCtx := p.GatherContext("u1")
	for _, field := range []string{"preferences", "inventory", "leftovers", "shopping_list"} {
		if agentCtx.FieldErrors[field] == "" {
			t.Errorf("Expected field error for %s", field)
		}
	}
	if agentCtx.GatheredAt.IsZero() {
		t.Errorf("GatheredAt should be set even when every fetch fails")
	}
}

func TestStripCodeFences(t *testing.T) {
	plain := `{"goal": "x"}`
	if got := stripCodeFences(plain); got != plain {
		t.Errorf("Plain JSON should pass through, got %q", got)
	}
	fenced := "```json\n{\"goal\": \"x\"}\n```"
	if got := stripCodeFences(fenced); got != `{"goal": "x"}` {
		t.Errorf("Fences not stripped: %q", got)
	}
}
