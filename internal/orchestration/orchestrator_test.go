package orchestration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miseapp/mise/internal/handlers"
	"github.com/miseapp/mise/internal/observability"
	"github.com/miseapp/mise/internal/store"
)

func testOrchestrator(t *testing.T, gen *fakeGenerator) *Orchestrator {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	events := observability.NewLoggerAt(filepath.Join(t.TempDir(), "audit.jsonl"))
	limiter := NewRateLimiter(10, 1000)
	return NewOrchestrator(gen, db, nil, handlers.NewDefaultRegistry(), limiter, events)
}

func TestOrchestrator_GreetingSkipsLLM(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(t, gen)

	reply := o.ProcessMessage(context.Background(), "u1", "hi", nil)
	if reply != greetingReplies["hi"] {
		t.Errorf("Unexpected greeting reply: %q", reply)
	}
	if gen.calls != 0 {
		t.Errorf("Greeting consumed %d LLM calls", gen.calls)
	}
}

func TestOrchestrator_EmptyQuerySkipsLLM(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(t, gen)

	reply := o.ProcessMessage(context.Background(), "u1", "show me my shopping list", nil)
	if !strings.Contains(reply, "empty") {
		t.Errorf("Expected empty-list coaching, got %q", reply)
	}
	if gen.calls != 0 {
		t.Errorf("Query consumed %d LLM calls", gen.calls)
	}
}

func TestOrchestrator_ActionFlowEndToEnd(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{
		"goal": "add groceries",
		"steps": [{
			"action": "addToShoppingList",
			"parameters": {"items": [
				{"item": "milk", "quantity": 1},
				{"item": "eggs", "quantity": 12}
			]},
			"description": "Add milk and eggs to your shopping list",
			"reason": "requested",
			"estimated_cost": 0
		}]
	}`}}
	o := testOrchestrator(t, gen)

	reply := o.ProcessMessage(context.Background(), "u1", "add milk and eggs to my shopping list", nil)
	if !strings.Contains(reply, "Added milk and eggs") {
		t.Errorf("Unexpected action reply: %q", reply)
	}
	if gen.calls != 1 {
		t.Errorf("Single-step action should spend exactly 1 LLM call, spent %d", gen.calls)
	}

	items, err := o.Store.GetShoppingList("u1")
	if err != nil {
		t.Fatalf("failed to read shopping list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items persisted, got %d", len(items))
	}
}

func TestOrchestrator_UnparseablePlanAsksToRephrase(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"I am unable to comply."}}
	o := testOrchestrator(t, gen)

	reply := o.ProcessMessage(context.Background(), "u1", "add something", nil)
	if !strings.Contains(reply, "rephrase") {
		t.Errorf("Expected a rephrase prompt, got %q", reply)
	}
}

func TestOrchestrator_ApprovalFlow(t *testing.T) {
	planJSON := `{
		"goal": "clear the list",
		"steps": [{
			"action": "removeFromShoppingList",
			"parameters": {"item_names": ["milk"]},
			"description": "Clear your entire shopping list",
			"estimated_cost": 0
		}]
	}`
	gen := &fakeGenerator{responses: []string{planJSON}}
	o := testOrchestrator(t, gen)

	reply := o.ProcessMessage(context.Background(), "u1", "remove everything from my shopping list", nil)
	if !strings.Contains(reply, "planning to do") {
		t.Fatalf("Expected plan presentation, got %q", reply)
	}
	if o.PendingPlan("u1") == nil {
		t.Fatal("Expected a parked plan awaiting approval")
	}

	// An unclear answer re-parks the plan.
	reply = o.ProcessMessage(context.Background(), "u1", "what do you mean", nil)
	if !strings.Contains(reply, "waiting for your approval") {
		t.Errorf("Expected a re-prompt, got %q", reply)
	}
	if o.PendingPlan("u1") == nil {
		t.Fatal("Unclear answer must keep the plan parked")
	}

	// "yes" executes the parked plan.
	reply = o.ProcessMessage(context.Background(), "u1", "yes", nil)
	if !strings.Contains(reply, "Cleared") {
		t.Errorf("Expected execution summary, got %q", reply)
	}
	if o.PendingPlan("u1") != nil {
		t.Error("Plan should be consumed after approval")
	}
}

func TestOrchestrator_RejectionCancelsPlan(t *testing.T) {
	planJSON := `{
		"goal": "clear the list",
		"steps": [{
			"action": "removeFromShoppingList",
			"parameters": {"item_names": ["milk"]},
			"description": "Clear your entire shopping list",
			"estimated_cost": 0
		}]
	}`
	gen := &fakeGenerator{responses: []string{planJSON}}
	o := testOrchestrator(t, gen)

	o.ProcessMessage(context.Background(), "u1", "remove everything from my shopping list", nil)
	if o.PendingPlan("u1") == nil {
		t.Fatal("Expected a parked plan")
	}

	reply := o.ProcessMessage(context.Background(), "u1", "no", nil)
	if !strings.Contains(reply, "cancelled") {
		t.Errorf("Expected cancellation, got %q", reply)
	}
	if o.PendingPlan("u1") != nil {
		t.Error("Rejected plan should not stay parked")
	}

	items, _ := o.Store.GetShoppingList("u1")
	if len(items) != 0 {
		t.Errorf("Rejected plan must not touch the store")
	}
}

func TestOrchestrator_DailyLimitReply(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(t, gen)
	o.Limiter = NewRateLimiter(10, 0)

	reply := o.ProcessMessage(context.Background(), "u1", "add milk to my list", nil)
	if reply != rateLimitedReply {
		t.Errorf("Expected rate-limit reply, got %q", reply)
	}
	if gen.calls != 0 {
		t.Errorf("Exhausted quota must not reach the LLM, spent %d calls", gen.calls)
	}
}

func TestOrchestrator_QuestionUsesContext(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Try a pasta with what you have."}}
	o := testOrchestrator(t, gen)

	if err := o.Store.UpsertInventory("u1", []store.InventoryItem{{ItemName: "penne", Quantity: 500, Unit: "g"}}); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}

	reply := o.ProcessMessage(context.Background(), "u1", "what should i cook tonight", nil)
	if reply != "Try a pasta with what you have." {
		t.Errorf("Unexpected answer: %q", reply)
	}
	if gen.calls != 1 {
		t.Errorf("Question should spend exactly 1 LLM call, spent %d", gen.calls)
	}
	if !strings.Contains(gen.prompts[0], "penne") {
		t.Errorf("Prompt is missing the pantry context: %q", gen.prompts[0])
	}
}

func TestOrchestrator_EmptyMessage(t *testing.T) {
	o := testOrchestrator(t, &fakeGenerator{})
	reply := o.ProcessMessage(context.Background(), "u1", "   ", nil)
	if !strings.Contains(reply, "didn't catch") {
		t.Errorf("Unexpected reply to blank message: %q", reply)
	}
}
