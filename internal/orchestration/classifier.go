package orchestration

import (
	"regexp"
	"strings"
)

// RequestType is the triage category for an incoming message.
type RequestType string

const (
	RequestGreeting RequestType = "greeting"
	RequestQuery    RequestType = "query"
	RequestAction   RequestType = "action"
	RequestQuestion RequestType = "question"
	RequestUnknown  RequestType = "unknown"
)

// ClassifiedRequest is the routing decision for one message. It is
// consumed immediately by the orchestrator and never persisted.
type ClassifiedRequest struct {
	Type            RequestType
	Intent          string
	TargetEntity    string
	RequiresContext bool
	RequiresLLM     bool
}

// Classifier triages messages without spending an LLM call. Tiers are
// checked in a fixed precedence: greeting, action, question, query,
// unknown. Actions must come before queries so "add milk to my shopping
// list" never reads as a list lookup.
type Classifier struct {
	greetings []*regexp.Regexp
	actions   []*regexp.Regexp
	questions []*regexp.Regexp
	queries   []entityPatterns
}

type entityPatterns struct {
	entity   string
	patterns []*regexp.Regexp
}

var greetingPatterns = []string{
	`^(hi|hello|hey|howdy|greetings)$`,
	`^(thanks|thank you|thx)$`,
	`^(bye|goodbye|see you|later)$`,
	`^(ok|okay|sure|yes|no|yep|nope|maybe)$`,
}

var actionPatterns = []string{
	`^add\s`,
	`^remove\s`,
	`^delete\s`,
	`^buy\s`,
	`^purchase\s`,
	`^order\s`,
	`^get\s+(me\s+)?some`,
	`^put\s`,
	`^update\s`,
	`^change\s`,
	`^set\s`,
	`add .+ to .+ (list|inventory|pantry)`,
	`(add|put|remove|delete) .+ (shopping|grocery|my)`,
	`i need`,
	`i want to (add|buy|get|order)`,
	`can you (add|buy|get|order|put|remove|delete)`,
	`please (add|buy|get|order|put|remove|delete)`,
}

var questionPatterns = []string{
	`what should i`,
	`what can i (cook|make|prepare|do)`,
	`what could i`,
	`(suggest|recommend)`,
	`what.*make.*for`,
	`any (idea|suggestion|recommendation)`,
	`help me (decide|choose|plan)`,
	`meal.*plan`,
}

var queryPatterns = []struct {
	entity   string
	patterns []string
}{
	{"shopping_list", []string{
		`(what('?s| is| are)?|show( me)?|see|view|check|list|display).*(shopping|grocery|shop).*list`,
		`shopping.*list`,
		`what.*need.*buy`,
		`what.*on.*list`,
	}},
	{"inventory", []string{
		`(what('?s| is| are)?|show( me)?|see|view|check|list|display).*(pantry|inventory|fridge|kitchen|have|got)`,
		`what.*ingredients?.*have`,
		`what('?s| is).*in.*(my )?(pantry|fridge|kitchen)`,
		`do i have`,
	}},
	{"leftovers", []string{
		`(what('?s| is| are)?|show( me)?|see|view|check|list|display).*leftover`,
		`any.*leftover`,
		`leftover`,
	}},
	{"preferences", []string{
		`(what('?s| is| are)?|show( me)?|see|view|check).*(preference|diet|restriction|goal)`,
		`my.*preference`,
		`dietary.*restriction`,
	}},
}

func NewClassifier() *Classifier {
	c := &Classifier{}
	for _, p := range greetingPatterns {
		c.greetings = append(c.greetings, regexp.MustCompile(p))
	}
	for _, p := range actionPatterns {
		c.actions = append(c.actions, regexp.MustCompile(p))
	}
	for _, p := range questionPatterns {
		c.questions = append(c.questions, regexp.MustCompile(p))
	}
	for _, group := range queryPatterns {
		ep := entityPatterns{entity: group.entity}
		for _, p := range group.patterns {
			ep.patterns = append(ep.patterns, regexp.MustCompile(p))
		}
		c.queries = append(c.queries, ep)
	}
	return c
}

// Classify triages a message. It always resolves to a type; anything
// unmatched falls through to unknown, which is routed like a question.
func (c *Classifier) Classify(message string) ClassifiedRequest {
	lower := strings.ToLower(strings.TrimSpace(message))

	for _, re := range c.greetings {
		if re.MatchString(lower) {
			return ClassifiedRequest{
				Type:   RequestGreeting,
				Intent: "greeting",
			}
		}
	}

	for _, re := range c.actions {
		if re.MatchString(lower) {
			return ClassifiedRequest{
				Type:            RequestAction,
				Intent:          "perform action",
				RequiresContext: true,
				RequiresLLM:     true,
			}
		}
	}

	for _, re := range c.questions {
		if re.MatchString(lower) {
			return ClassifiedRequest{
				Type:            RequestQuestion,
				Intent:          "get recommendation",
				RequiresContext: true,
				RequiresLLM:     true,
			}
		}
	}

	for _, group := range c.queries {
		for _, re := range group.patterns {
			if re.MatchString(lower) {
				return ClassifiedRequest{
					Type:            RequestQuery,
					Intent:          "view " + group.entity,
					TargetEntity:    group.entity,
					RequiresContext: true,
				}
			}
		}
	}

	return ClassifiedRequest{
		Type:            RequestUnknown,
		Intent:          "unknown",
		RequiresContext: true,
		RequiresLLM:     true,
	}
}
