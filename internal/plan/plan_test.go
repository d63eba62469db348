package plan

import (
	"strings"
	"testing"
)

func TestActionPlan_AddStepAssignsDefaults(t *testing.T) {
	p := New("restock the pantry")
	if p.ID == "" || p.Status != StatusDraft {
		t.Fatalf("New plan malformed: %+v", p)
	}

	p.AddStep(&Step{Action: "addToShoppingList"})
	if p.Steps[0].ID == "" {
		t.Errorf("Step should get a generated ID")
	}
	if p.Steps[0].Status != StepPending {
		t.Errorf("Step should start pending, got %s", p.Steps[0].Status)
	}
}

func TestActionPlan_CostAndStepFilters(t *testing.T) {
	p := New("goal")
	p.AddStep(&Step{Action: "a", EstimatedCost: 2.5, Status: StepCompleted})
	p.AddStep(&Step{Action: "b", EstimatedCost: 1.5, Status: StepFailed})

	if got := p.TotalEstimatedCost(); got != 4 {
		t.Errorf("TotalEstimatedCost = %g, expected 4", got)
	}
	if len(p.CompletedSteps()) != 1 || len(p.FailedSteps()) != 1 {
		t.Errorf("Step filters wrong: %d completed, %d failed",
			len(p.CompletedSteps()), len(p.FailedSteps()))
	}
}

func TestActionPlan_Conversational(t *testing.T) {
	p := New("goal")
	p.AddStep(&Step{Description: "Add milk", Reason: "you're out", EstimatedCost: 3})
	p.ApprovalReason = "this costs money."

	text := p.Conversational()
	for _, want := range []string{"1. Add milk", "you're out", "$3.00", "this costs money.", "yes to proceed"} {
		if !strings.Contains(text, want) {
			t.Errorf("Conversational output missing %q:\n%s", want, text)
		}
	}
}
