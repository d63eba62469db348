package orchestration

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/miseapp/mise/internal/handlers"
	"github.com/miseapp/mise/internal/observability"
	"github.com/miseapp/mise/internal/plan"
)

// ProgressFunc receives per-step progress updates during execution.
// Stage is one of "executing", "completed", "failed".
type ProgressFunc func(step *plan.Step, stage string)

// LogEntry is one row of the execution audit trail.
type LogEntry struct {
	StepID        string    `json:"step_id"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	ResultPreview string    `json:"result_preview,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// rollbackActions maps an action to its best-effort inverse. Actions
// without an entry simply can't be rolled back; leftovers creation is
// the known gap since undoing it would need the generated IDs.
var rollbackActions = map[string]string{
	"addToShoppingList":       "removeFromShoppingList",
	"createShoppingListItems": "deleteShoppingListItems",
	"createInventoryItems":    "deleteInventoryItem",
}

// Executor runs approved plans step by step, isolating per-step failures
// and keeping an audit trail of everything it touched.
type Executor struct {
	Registry *handlers.Registry
	Events   *observability.Logger

	mu           sync.Mutex
	executionLog []LogEntry
}

func NewExecutor(registry *handlers.Registry, events *observability.Logger) *Executor {
	return &Executor{Registry: registry, Events: events}
}

// ExecutePlan runs every step of an approved plan strictly in order. A
// failing step is recorded and skipped past, never aborting the rest:
// partial success still counts as a completed plan. Plans in any other
// status are returned untouched.
func (e *Executor) ExecutePlan(ctx context.Context, p *plan.ActionPlan, hctx *handlers.Context, progress ProgressFunc) *plan.ActionPlan {
	if p.Status != plan.StatusApproved {
		log.Printf("Cannot execute plan %s with status %s", p.ID, p.Status)
		return p
	}

	p.Status = plan.StatusExecuting

	for _, step := range p.Steps {
		step.Status = plan.StepExecuting
		if progress != nil {
			progress(step, "executing")
		}
		hctx.Progress("⏳ " + step.Description)

		result, err := e.Registry.Dispatch(ctx, step.Action, step.Parameters, hctx)
		step.ExecutedAt = time.Now()

		if err != nil {
			step.Status = plan.StepFailed
			step.Error = err.Error()
			e.appendLog(LogEntry{
				StepID:    step.ID,
				Action:    step.Action,
				Status:    "failed",
				Timestamp: step.ExecutedAt,
				Error:     err.Error(),
			})
			e.Events.LogStep(hctx.UserID, p.ID, step.ID, step.Action, "failed", err.Error())
			hctx.Progress(fmt.Sprintf("❌ Failed: %s - %v", step.Description, err))
			if progress != nil {
				progress(step, "failed")
			}
			continue
		}

		step.Result = result
		step.Status = plan.StepCompleted
		e.appendLog(LogEntry{
			StepID:        step.ID,
			Action:        step.Action,
			Status:        "completed",
			Timestamp:     step.ExecutedAt,
			ResultPreview: truncate(result, 200),
		})
		e.Events.LogStep(hctx.UserID, p.ID, step.ID, step.Action, "completed", truncate(result, 200))
		hctx.Progress("✅ " + step.Description)
		if progress != nil {
			progress(step, "completed")
		}
	}

	completed := len(p.CompletedSteps())
	failed := len(p.FailedSteps())

	switch {
	case failed == 0:
		p.Status = plan.StatusCompleted
		p.ExecutionSummary = fmt.Sprintf("All %d steps completed successfully", completed)
	case completed == 0:
		p.Status = plan.StatusFailed
		p.ExecutionSummary = fmt.Sprintf("All %d steps failed", failed)
	default:
		// Partial success is still a completed plan.
		p.Status = plan.StatusCompleted
		p.ExecutionSummary = fmt.Sprintf("%d steps succeeded, %d failed", completed, failed)
	}
	p.CompletedAt = time.Now()

	log.Printf("Plan execution complete: %s", p.ExecutionSummary)
	return p
}

// ExecuteSingleStep runs one step outside a plan, with the same status
// machinery but no audit log entry. Used for ad hoc and rollback steps.
func (e *Executor) ExecuteSingleStep(ctx context.Context, step *plan.Step, hctx *handlers.Context) *plan.Step {
	step.Status = plan.StepExecuting
	result, err := e.Registry.Dispatch(ctx, step.Action, step.Parameters, hctx)
	step.ExecutedAt = time.Now()
	if err != nil {
		step.Status = plan.StepFailed
		step.Error = err.Error()
		return step
	}
	step.Result = result
	step.Status = plan.StepCompleted
	return step
}

// RollbackPlan undoes completed steps in reverse order, best effort.
// Steps without a registered inverse are skipped with a warning; rollback
// is advisory, not guaranteed. Returns false if nothing was attempted.
func (e *Executor) RollbackPlan(ctx context.Context, p *plan.ActionPlan, hctx *handlers.Context) bool {
	completed := p.CompletedSteps()
	if len(completed) == 0 {
		log.Printf("No completed steps to roll back for plan %s", p.ID)
		return false
	}

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		inverse, ok := rollbackActions[step.Action]
		if !ok {
			log.Printf("No rollback action for: %s", step.Action)
			continue
		}

		rollbackStep := &plan.Step{
			Action:      inverse,
			Parameters:  buildRollbackParams(step),
			Description: "Rolling back: " + step.Description,
			Reason:      "Rollback due to plan failure",
		}
		e.ExecuteSingleStep(ctx, rollbackStep, hctx)
		e.Events.Log(observability.Event{
			Type:   observability.EventTypeRollback,
			UserID: hctx.UserID,
			PlanID: p.ID,
			StepID: step.ID,
			Data: map[string]string{
				"action": inverse,
				"status": string(rollbackStep.Status),
			},
		})
		log.Printf("Rolled back step: %s", step.Action)
	}

	return true
}

// buildRollbackParams derives inverse-action parameters from the
// original step; for list adds that means extracting the item names.
func buildRollbackParams(step *plan.Step) map[string]any {
	switch step.Action {
	case "addToShoppingList", "createShoppingListItems", "createInventoryItems":
		raw, _ := step.Parameters["items"].([]any)
		var names []any
		for _, entry := range raw {
			switch item := entry.(type) {
			case map[string]any:
				for _, key := range []string{"item", "item_name", "name"} {
					if name, ok := item[key].(string); ok && name != "" {
						names = append(names, name)
						break
					}
				}
			case string:
				names = append(names, item)
			}
		}
		return map[string]any{"item_names": names}
	}
	return step.Parameters
}

func (e *Executor) appendLog(entry LogEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executionLog = append(e.executionLog, entry)
}

// ExecutionLog returns a copy of the audit trail.
func (e *Executor) ExecutionLog() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LogEntry, len(e.executionLog))
	copy(out, e.executionLog)
	return out
}

// ClearExecutionLog drops the audit trail.
func (e *Executor) ClearExecutionLog() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executionLog = nil
}
