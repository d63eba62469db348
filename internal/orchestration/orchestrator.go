package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/miseapp/mise/internal/amazon"
	"github.com/miseapp/mise/internal/handlers"
	"github.com/miseapp/mise/internal/llm"
	"github.com/miseapp/mise/internal/observability"
	"github.com/miseapp/mise/internal/plan"
	"github.com/miseapp/mise/internal/store"
)

const responseSystemPrompt = `You're a friendly kitchen assistant. You help people plan meals, manage their
pantry, and reduce food waste. Be warm and concise. Ground your answers in the
kitchen context you're given and never invent items the person doesn't have.`

const rateLimitedReply = "I'm taking a short break to stay within my daily limits. Please try again tomorrow!"

// greetingReplies handles social pleasantries without any model call.
var greetingReplies = map[string]string{
	"hi":        "Hey! What can I help you with in the kitchen today?",
	"hello":     "Hello! Need help with your shopping list, pantry, or meal ideas?",
	"hey":       "Hey there! What's cooking?",
	"thanks":    "You're welcome! Anything else I can help with?",
	"thank you": "Happy to help! Let me know if you need anything else.",
	"bye":       "Bye! Happy cooking!",
	"goodbye":   "Goodbye! Come back when you're hungry for ideas.",
}

// approvalWords and rejectionWords decide a reply to a pending plan.
var approvalWords = map[string]bool{
	"yes": true, "y": true, "ok": true, "okay": true, "sure": true,
	"go": true, "do it": true, "approve": true, "proceed": true,
	"yep": true, "yup": true,
}

var rejectionWords = map[string]bool{
	"no": true, "n": true, "cancel": true, "stop": true,
	"nevermind": true, "never mind": true, "nope": true, "nah": true,
}

// Orchestrator routes each incoming message through classification and
// the cheapest path that can answer it, reserving the planner for
// requests that actually change state.
type Orchestrator struct {
	Classifier *Classifier
	Limiter    *RateLimiter
	Planner    *Planner
	Validator  *Validator
	Executor   *Executor
	Store      *store.Store
	Search     *amazon.Client
	LLM        llm.Generator
	Events     *observability.Logger

	mu      sync.Mutex
	pending map[string]*plan.ActionPlan
}

func NewOrchestrator(generator llm.Generator, db *store.Store, search *amazon.Client, registry *handlers.Registry, limiter *RateLimiter, events *observability.Logger) *Orchestrator {
	return &Orchestrator{
		Classifier: NewClassifier(),
		Limiter:    limiter,
		Planner:    NewPlanner(generator, db),
		Validator:  NewValidator(),
		Executor:   NewExecutor(registry, events),
		Store:      db,
		Search:     search,
		LLM:        generator,
		Events:     events,
		pending:    make(map[string]*plan.ActionPlan),
	}
}

// ProcessMessage handles one user message end to end and always returns
// reply text, converting every internal failure into something a person
// can act on. The progress callback may be nil.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userID, message string, progress func(string)) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "I didn't catch that. What would you like to do?"
	}

	observability.SetStatus(observability.PhasePlanning, truncate(trimmed, 60))
	defer observability.SetStatus(observability.PhaseIdle, "")

	// A pending plan claims the next message as its approval response.
	if p := o.takePendingPlan(userID); p != nil {
		return o.handleApprovalResponse(ctx, userID, trimmed, p, progress)
	}

	classified := o.Classifier.Classify(trimmed)
	o.Events.LogClassify(userID, string(classified.Type), classified.Intent)
	log.Printf("Classified message from %s as %s", userID, classified.Type)

	switch classified.Type {
	case RequestGreeting:
		return greetingReply(trimmed)
	case RequestQuery:
		agentCtx := o.Planner.GatherContext(userID)
		return formatEntity(classified.TargetEntity, agentCtx)
	case RequestAction:
		return o.handleAction(ctx, userID, trimmed, progress)
	default:
		return o.handleQuestion(ctx, userID, trimmed)
	}
}

func greetingReply(message string) string {
	if reply, ok := greetingReplies[strings.ToLower(strings.TrimSpace(message))]; ok {
		return reply
	}
	return "Hi! I can manage your shopping list, pantry, and leftovers, or suggest what to cook. What do you need?"
}

// handleAction runs the full agentic pipeline: gather context, plan,
// validate, then execute or park the plan for approval.
func (o *Orchestrator) handleAction(ctx context.Context, userID, message string, progress func(string)) string {
	agentCtx := o.Planner.GatherContext(userID)

	if reply, limited := o.waitForSlot(ctx, userID); limited {
		return reply
	}

	tools := o.toolInfos()
	p := o.Planner.CreatePlan(ctx, message, agentCtx, tools)
	o.Events.LogPlan(userID, p.ID, len(p.Steps), string(p.Status))

	if p.Status == plan.StatusFailed || len(p.Steps) == 0 {
		return "I couldn't figure out how to do that. Could you rephrase it? For example: 'add milk and eggs to my shopping list'."
	}

	result := o.Validator.ValidatePlan(p, agentCtx)
	o.Events.LogValidate(userID, p.ID, result.IsValid, result.RequiresApproval, len(result.Warnings))

	if !result.IsValid {
		return result.Message()
	}

	if result.RequiresApproval {
		o.setPendingPlan(userID, p)
		return p.Conversational()
	}

	o.Validator.ApprovePlan(p)
	reply := o.executeApproved(ctx, userID, p, progress)
	if len(result.Warnings) > 0 {
		reply += "\n\nA few things to note:\n• " + strings.Join(result.Warnings, "\n• ")
	}
	return reply
}

// handleQuestion answers recommendations and anything unclassifiable
// with a single context-grounded model call.
func (o *Orchestrator) handleQuestion(ctx context.Context, userID, message string) string {
	agentCtx := o.Planner.GatherContext(userID)

	if reply, limited := o.waitForSlot(ctx, userID); limited {
		return reply
	}

	prompt := fmt.Sprintf("## KITCHEN CONTEXT\n%s\n## QUESTION\n%s", contextSummary(agentCtx), message)
	text, err := o.LLM.Generate(ctx, responseSystemPrompt, prompt, summaryTemperature)
	if err != nil {
		log.Printf("Failed to answer question for %s: %v", userID, err)
		return "I'm having trouble thinking right now. Please try again in a moment."
	}
	if strings.TrimSpace(text) == "" {
		return "I don't have a good answer for that. Could you try asking differently?"
	}
	return strings.TrimSpace(text)
}

// handleApprovalResponse resolves a parked plan. Anything that is
// neither a clear yes nor a clear no re-displays the plan and parks it
// again.
func (o *Orchestrator) handleApprovalResponse(ctx context.Context, userID, message string, p *plan.ActionPlan, progress func(string)) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case approvalWords[lower]:
		o.Validator.ApprovePlan(p)
		return o.executeApproved(ctx, userID, p, progress)
	case rejectionWords[lower]:
		o.Validator.RejectPlan(p, "user declined")
		return "No problem, I've cancelled that. Anything else?"
	default:
		o.setPendingPlan(userID, p)
		return "I still have a plan waiting for your approval:\n\n" + p.Conversational()
	}
}

func (o *Orchestrator) executeApproved(ctx context.Context, userID string, p *plan.ActionPlan, progress func(string)) string {
	observability.SetStatus(observability.PhaseExecuting, truncate(p.Goal, 60))

	hctx := &handlers.Context{
		UserID:  userID,
		Store:   o.Store,
		Search:  o.Search,
		LogStep: progress,
	}
	executed := o.Executor.ExecutePlan(ctx, p, hctx, nil)
	return o.summarizeExecution(ctx, executed)
}

// waitForSlot blocks through minute-window pressure and converts daily
// exhaustion into user-facing text.
func (o *Orchestrator) waitForSlot(ctx context.Context, userID string) (string, bool) {
	waited, err := o.Limiter.WaitIfNeeded(ctx)
	if err != nil {
		if errors.Is(err, ErrRateLimitExceeded) {
			return rateLimitedReply, true
		}
		log.Printf("Rate limiter error for %s: %v", userID, err)
		return fmt.Sprintf("Sorry, something went wrong: %v. Please try again.", err), true
	}
	if waited > 0 {
		o.Events.LogRateLimit(userID, waited)
	}
	return "", false
}

func (o *Orchestrator) toolInfos() []ToolInfo {
	descriptors := o.Executor.Registry.Descriptors()
	tools := make([]ToolInfo, len(descriptors))
	for i, d := range descriptors {
		tools[i] = ToolInfo{Name: d.Name, Description: d.Description}
	}
	return tools
}

// takePendingPlan removes and returns the user's parked plan, if any.
func (o *Orchestrator) takePendingPlan(userID string) *plan.ActionPlan {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.pending[userID]
	delete(o.pending, userID)
	return p
}

// setPendingPlan parks a plan for the user's next message. A plan
// already parked for the same user is silently replaced.
func (o *Orchestrator) setPendingPlan(userID string, p *plan.ActionPlan) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[userID] = p
}

// PendingPlan reports the user's parked plan without consuming it.
func (o *Orchestrator) PendingPlan(userID string) *plan.ActionPlan {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending[userID]
}
