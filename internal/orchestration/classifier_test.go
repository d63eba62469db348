package orchestration

import "testing"

func TestClassifier_Greetings(t *testing.T) {
	c := NewClassifier()

	for _, msg := range []string{"hi", "Hello", "  hey  ", "thanks", "bye"} {
		got := c.Classify(msg)
		if got.Type != RequestGreeting {
			t.Errorf("Classify(%q) = %s, expected greeting", msg, got.Type)
		}
		if got.RequiresLLM {
			t.Errorf("Classify(%q) should not require an LLM call", msg)
		}
	}

	// Greeting words are anchored; a sentence starting with one is not a greeting.
	got := c.Classify("hi can you add milk to my list")
	if got.Type == RequestGreeting {
		t.Errorf("Classify of a full sentence should not be a greeting, got %s", got.Type)
	}
}

func TestClassifier_ActionBeatsQuery(t *testing.T) {
	c := NewClassifier()

	// Mentions the shopping list but starts with an action verb.
	got := c.Classify("add milk to my shopping list")
	if got.Type != RequestAction {
		t.Fatalf("Expected action, got %s", got.Type)
	}
	if !got.RequiresLLM || !got.RequiresContext {
		t.Errorf("Actions need both context and the LLM, got %+v", got)
	}
}

func TestClassifier_Queries(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		msg    string
		entity string
	}{
		{"show me my shopping list", "shopping_list"},
		{"what's in my pantry", "inventory"},
		{"show me my leftovers", "leftovers"},
		{"what are my dietary restrictions", "preferences"},
	}

	for _, tc := range cases {
		got := c.Classify(tc.msg)
		if got.Type != RequestQuery {
			t.Errorf("Classify(%q) = %s, expected query", tc.msg, got.Type)
			continue
		}
		if got.TargetEntity != tc.entity {
			t.Errorf("Classify(%q) entity = %s, expected %s", tc.msg, got.TargetEntity, tc.entity)
		}
		if got.RequiresLLM {
			t.Errorf("Classify(%q) should not require an LLM call", tc.msg)
		}
	}
}

func TestClassifier_QuestionsAndUnknown(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("what should I cook tonight?")
	if got.Type != RequestQuestion {
		t.Errorf("Expected question, got %s", got.Type)
	}

	got = c.Classify("the weather is nice today")
	if got.Type != RequestUnknown {
		t.Errorf("Expected unknown, got %s", got.Type)
	}
	if !got.RequiresLLM {
		t.Errorf("Unknown requests should fall through to the LLM")
	}
}
