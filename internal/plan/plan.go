package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an ActionPlan.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusExecuting        Status = "executing"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
)

// StepStatus is the lifecycle state of a single PlanStep.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepExecuting StepStatus = "executing"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Step is one atomic operation within a plan, mapped to exactly one
// handler invocation.
type Step struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	Description   string         `json:"description"`
	Reason        string         `json:"reason"`
	EstimatedCost float64        `json:"estimated_cost"`
	Status        StepStatus     `json:"status"`
	Result        string         `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutedAt    time.Time      `json:"executed_at,omitempty"`
}

// ActionPlan is an ordered list of proposed operations generated from a
// natural-language request, subject to validation before any side effect.
type ActionPlan struct {
	ID               string            `json:"id"`
	Goal             string            `json:"goal"`
	Context          map[string]string `json:"context,omitempty"`
	Steps            []*Step           `json:"steps"`
	Status           Status            `json:"status"`
	RequiresApproval bool              `json:"requires_approval"`
	ApprovalReason   string            `json:"approval_reason,omitempty"`
	ExecutionSummary string            `json:"execution_summary,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	CompletedAt      time.Time         `json:"completed_at,omitempty"`
}

func New(goal string) *ActionPlan {
	return &ActionPlan{
		ID:        uuid.NewString(),
		Goal:      goal,
		Status:    StatusDraft,
		CreatedAt: time.Now(),
	}
}

// AddStep appends a step, assigning it an ID if it has none.
func (p *ActionPlan) AddStep(s *Step) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StepPending
	}
	p.Steps = append(p.Steps, s)
}

// TotalEstimatedCost sums the estimated cost of every step.
func (p *ActionPlan) TotalEstimatedCost() float64 {
	var total float64
	for _, s := range p.Steps {
		total += s.EstimatedCost
	}
	return total
}

func (p *ActionPlan) CompletedSteps() []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			out = append(out, s)
		}
	}
	return out
}

func (p *ActionPlan) FailedSteps() []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Status == StepFailed {
			out = append(out, s)
		}
	}
	return out
}

// Conversational renders the plan for user approval.
func (p *ActionPlan) Conversational() string {
	var b strings.Builder
	b.WriteString("Here's what I'm planning to do:\n\n")
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Description)
		if s.Reason != "" {
			fmt.Fprintf(&b, "   (%s)\n", s.Reason)
		}
	}
	if cost := p.TotalEstimatedCost(); cost > 0 {
		fmt.Fprintf(&b, "\nEstimated cost: $%.2f\n", cost)
	}
	if p.ApprovalReason != "" {
		fmt.Fprintf(&b, "\n%s\n", p.ApprovalReason)
	}
	b.WriteString("\nSay yes to proceed or no to cancel.")
	return b.String()
}
