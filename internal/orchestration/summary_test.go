package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/miseapp/mise/internal/plan"
)

func TestRewritePast(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Add milk to your list", "Added milk to your list"},
		{"remove the expired yogurt", "Removed the expired yogurt"},
		{"Defenestrate the toaster", "Done: Defenestrate the toaster"},
		{"", "Done."},
	}
	for _, tc := range cases {
		if got := rewritePast(tc.in); got != tc.want {
			t.Errorf("rewritePast(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestSummarizeExecution_SingleStepIsDeterministic(t *testing.T) {
	gen := &fakeGenerator{}
	o := &Orchestrator{LLM: gen, Limiter: NewRateLimiter(10, 1000)}

	p := plan.New("goal")
	p.AddStep(&plan.Step{Description: "Add milk to your shopping list", Status: plan.StepCompleted})

	got := o.summarizeExecution(context.Background(), p)
	if got != "Added milk to your shopping list" {
		t.Errorf("Unexpected summary: %q", got)
	}
	if gen.calls != 0 {
		t.Errorf("Single-step summary must not call the LLM, made %d calls", gen.calls)
	}
}

func TestSummarizeExecution_MultiStepFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("unavailable")}
	o := &Orchestrator{LLM: gen, Limiter: NewRateLimiter(10, 1000)}

	p := plan.New("goal")
	p.AddStep(&plan.Step{Description: "Add milk", Status: plan.StepCompleted})
	p.AddStep(&plan.Step{Description: "Add eggs", Status: plan.StepCompleted})

	got := o.summarizeExecution(context.Background(), p)
	if !strings.Contains(got, "Added milk") || !strings.Contains(got, "Added eggs") {
		t.Errorf("Fallback summary should list every step: %q", got)
	}
}

func TestSummarizeExecution_ReportsFailures(t *testing.T) {
	o := &Orchestrator{LLM: &fakeGenerator{}, Limiter: NewRateLimiter(10, 1000)}

	p := plan.New("goal")
	p.AddStep(&plan.Step{Description: "Add milk", Status: plan.StepCompleted})
	p.AddStep(&plan.Step{Description: "Add caviar", Status: plan.StepFailed})

	got := o.summarizeExecution(context.Background(), p)
	if !strings.Contains(got, "1 of 2 steps didn't go through") {
		t.Errorf("Expected failure footnote, got %q", got)
	}

	allFailed := plan.New("goal")
	allFailed.AddStep(&plan.Step{Description: "Add milk", Status: plan.StepFailed})
	got = o.summarizeExecution(context.Background(), allFailed)
	if !strings.Contains(got, "ran into some issues") {
		t.Errorf("Expected total-failure message, got %q", got)
	}
}
