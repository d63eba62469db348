package orchestration

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/miseapp/mise/internal/plan"
)

const summaryTemperature = 0.7

// pastTense rewrites the leading imperative verb of a step description.
// Descriptions start with verbs the planner prompt encourages, so a
// small lookup covers the common cases and anything else gets wrapped.
var pastTense = map[string]string{
	"add":      "added",
	"remove":   "removed",
	"delete":   "deleted",
	"update":   "updated",
	"create":   "created",
	"buy":      "bought",
	"order":    "ordered",
	"purchase": "purchased",
	"set":      "set",
	"put":      "put",
	"search":   "searched",
	"save":     "saved",
	"clear":    "cleared",
	"adjust":   "adjusted",
	"store":    "stored",
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// rewritePast converts "Add milk to your list" into "Added milk to your
// list", falling back to a generic wrapper for unknown verbs.
func rewritePast(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return "Done."
	}
	verb := strings.ToLower(fields[0])
	past, ok := pastTense[verb]
	if !ok {
		return "Done: " + description
	}
	rest := strings.Join(fields[1:], " ")
	if rest == "" {
		return capitalize(past) + "."
	}
	return capitalize(past) + " " + rest
}

// summarizeExecution produces the natural-language completion text for
// an executed plan. One completed step is rewritten deterministically;
// several steps get one extra rate-limited LLM call, with concatenated
// rewrites as the fallback when that call is refused or fails.
func (o *Orchestrator) summarizeExecution(ctx context.Context, p *plan.ActionPlan) string {
	completed := p.CompletedSteps()
	failed := p.FailedSteps()

	if len(completed) == 0 {
		return "I tried to make those changes but ran into some issues. Please try again."
	}

	var summary string
	if len(completed) == 1 {
		summary = rewritePast(completed[0].Description)
	} else {
		summary = o.llmSummary(ctx, completed)
	}

	if len(failed) > 0 {
		summary += fmt.Sprintf("\n\n(%d of %d steps didn't go through.)", len(failed), len(p.Steps))
	}
	return summary
}

func (o *Orchestrator) llmSummary(ctx context.Context, completed []*plan.Step) string {
	fallback := func() string {
		lines := make([]string, len(completed))
		for i, s := range completed {
			lines[i] = "• " + rewritePast(s.Description)
		}
		return "Done!\n" + strings.Join(lines, "\n")
	}

	if _, err := o.Limiter.WaitIfNeeded(ctx); err != nil {
		// Daily quota exhaustion never blocks a summary; the work is
		// already done, so fall back to the deterministic rendering.
		log.Printf("Skipping LLM summary: %v", err)
		return fallback()
	}

	var b strings.Builder
	b.WriteString("Summarize the following completed kitchen-assistant actions in 1-2 friendly sentences:\n")
	for _, s := range completed {
		fmt.Fprintf(&b, "- %s\n", s.Description)
	}

	text, err := o.LLM.Generate(ctx, responseSystemPrompt, b.String(), summaryTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("LLM summary failed: %v", err)
		}
		return fallback()
	}
	return strings.TrimSpace(text)
}
