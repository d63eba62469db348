package orchestration

import (
	"fmt"
	"strings"

	"github.com/miseapp/mise/internal/plan"
)

// formatEntity renders one slice of the context snapshot for a direct
// query, with a nudge toward the next useful action when it's empty.
func formatEntity(entity string, agentCtx *plan.AgentContext) string {
	if msg, broken := agentCtx.FieldErrors[entity]; broken {
		return fmt.Sprintf("I couldn't read your %s right now (%s). Please try again in a moment.",
			strings.ReplaceAll(entity, "_", " "), msg)
	}

	switch entity {
	case "shopping_list":
		return formatShoppingList(agentCtx)
	case "inventory":
		return formatInventory(agentCtx)
	case "leftovers":
		return formatLeftovers(agentCtx)
	case "preferences":
		return formatPreferences(agentCtx)
	}
	return "I'm not sure what you'd like to see. You can ask about your shopping list, inventory, leftovers, or preferences."
}

func formatShoppingList(agentCtx *plan.AgentContext) string {
	if len(agentCtx.ShoppingList) == 0 {
		return "Your shopping list is empty. Tell me what you need and I'll add it!"
	}

	var b strings.Builder
	b.WriteString("🛒 Your shopping list:\n")
	for i, item := range agentCtx.ShoppingList {
		if item.Quantity > 0 && item.Unit != "" {
			fmt.Fprintf(&b, "%d. %g %s %s\n", i+1, item.Quantity, item.Unit, item.Item)
		} else if item.Quantity > 1 {
			fmt.Fprintf(&b, "%d. %s (x%g)\n", i+1, item.Item, item.Quantity)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Item)
		}
	}
	fmt.Fprintf(&b, "\n%d items total.", len(agentCtx.ShoppingList))
	return b.String()
}

func formatInventory(agentCtx *plan.AgentContext) string {
	if len(agentCtx.Inventory) == 0 {
		return "Your pantry is empty. As you stock up, tell me and I'll keep track."
	}

	// Group by category, keeping first-seen category order.
	grouped := make(map[string][]string)
	var categories []string
	for _, item := range agentCtx.Inventory {
		category := item.Category
		if category == "" {
			category = "other"
		}
		if _, seen := grouped[category]; !seen {
			categories = append(categories, category)
		}
		line := item.ItemName
		if item.Quantity > 0 {
			line = fmt.Sprintf("%s: %g %s", item.ItemName, item.Quantity, item.Unit)
		}
		grouped[category] = append(grouped[category], strings.TrimSpace(line))
	}

	var b strings.Builder
	b.WriteString("🥫 Your pantry:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "\n%s:\n", capitalize(category))
		for _, line := range grouped[category] {
			fmt.Fprintf(&b, "  • %s\n", line)
		}
	}
	fmt.Fprintf(&b, "\n%d items total.", len(agentCtx.Inventory))
	return b.String()
}

func formatLeftovers(agentCtx *plan.AgentContext) string {
	if len(agentCtx.Leftovers) == 0 {
		return "No leftovers right now. When you cook extra, let me know and I'll remember it."
	}

	var b strings.Builder
	b.WriteString("🍲 Your leftovers:\n")
	for _, l := range agentCtx.Leftovers {
		fmt.Fprintf(&b, "• %s: %g serving(s)", l.MealName, l.Servings)
		if l.Notes != "" {
			fmt.Fprintf(&b, " (%s)", l.Notes)
		}
		if !l.DateCreated.IsZero() {
			fmt.Fprintf(&b, " from %s", l.DateCreated.Format("Jan 2"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nEat these first to avoid waste!")
	return b.String()
}

func formatPreferences(agentCtx *plan.AgentContext) string {
	prefs := agentCtx.Preferences
	if prefs == nil {
		return "I don't have any preferences saved for you yet. Tell me about your dietary restrictions, health goals, or favorite cuisines!"
	}

	var b strings.Builder
	b.WriteString("⚙️ Your preferences:\n")
	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "• Dietary restrictions: %s\n", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if len(prefs.HealthGoals) > 0 {
		fmt.Fprintf(&b, "• Health goals: %s\n", strings.Join(prefs.HealthGoals, ", "))
	}
	if len(prefs.CuisinePreferences) > 0 {
		fmt.Fprintf(&b, "• Favorite cuisines: %s\n", strings.Join(prefs.CuisinePreferences, ", "))
	}
	if prefs.FamilySize > 0 {
		fmt.Fprintf(&b, "• Family size: %d\n", prefs.FamilySize)
	}
	for key, value := range prefs.Extra {
		fmt.Fprintf(&b, "• %s: %s\n", strings.ReplaceAll(key, "_", " "), value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// contextSummary renders a compact snapshot for recommendation prompts.
func contextSummary(agentCtx *plan.AgentContext) string {
	var b strings.Builder

	if prefs := agentCtx.Preferences; prefs != nil {
		if len(prefs.DietaryRestrictions) > 0 {
			fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(prefs.DietaryRestrictions, ", "))
		}
		if len(prefs.HealthGoals) > 0 {
			fmt.Fprintf(&b, "Health goals: %s\n", strings.Join(prefs.HealthGoals, ", "))
		}
		if prefs.FamilySize > 0 {
			fmt.Fprintf(&b, "Family size: %d\n", prefs.FamilySize)
		}
	}

	if len(agentCtx.Inventory) > 0 {
		names := make([]string, 0, len(agentCtx.Inventory))
		for i, item := range agentCtx.Inventory {
			if i >= 20 {
				break
			}
			names = append(names, item.ItemName)
		}
		fmt.Fprintf(&b, "Pantry: %s\n", strings.Join(names, ", "))
	} else {
		b.WriteString("Pantry: empty\n")
	}

	if len(agentCtx.Leftovers) > 0 {
		names := make([]string, 0, len(agentCtx.Leftovers))
		for _, l := range agentCtx.Leftovers {
			names = append(names, fmt.Sprintf("%s (%g servings)", l.MealName, l.Servings))
		}
		fmt.Fprintf(&b, "Leftovers: %s\n", strings.Join(names, ", "))
	}

	if len(agentCtx.ShoppingList) > 0 {
		names := make([]string, 0, len(agentCtx.ShoppingList))
		for _, item := range agentCtx.ShoppingList {
			names = append(names, item.Item)
		}
		fmt.Fprintf(&b, "Shopping list: %s\n", strings.Join(names, ", "))
	}

	return b.String()
}
