package handlers

import (
	"strconv"
	"strings"

	"github.com/miseapp/mise/internal/store"
)

// Parameter normalization for LLM-produced arguments. The planner's JSON
// arrives with whatever field spellings the model chose, so every lookup
// resolves an explicit alias list at this boundary and the rest of the
// code sees fixed types.

func stringArg(args map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func numberArg(args map[string]any, def float64, keys ...string) float64 {
	for _, key := range keys {
		v, ok := args[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// shoppingItemsArg normalizes the items parameter into shopping list
// entries, accepting objects with aliased field names or bare strings.
func shoppingItemsArg(args map[string]any) []store.ShoppingItem {
	raw, ok := args["items"].([]any)
	if !ok {
		return nil
	}

	var items []store.ShoppingItem
	for _, entry := range raw {
		switch v := entry.(type) {
		case map[string]any:
			name := stringArg(v, "item", "name", "item_name")
			if name == "" {
				continue
			}
			items = append(items, store.ShoppingItem{
				Item:     name,
				Quantity: numberArg(v, 1, "quantity", "qty", "amount"),
				Unit:     stringArg(v, "unit", "units"),
			})
		case string:
			if strings.TrimSpace(v) != "" {
				items = append(items, store.ShoppingItem{Item: strings.TrimSpace(v), Quantity: 1})
			}
		}
	}
	return items
}

// inventoryItemsArg normalizes the items parameter into inventory rows.
func inventoryItemsArg(args map[string]any) []store.InventoryItem {
	raw, ok := args["items"].([]any)
	if !ok {
		return nil
	}

	var items []store.InventoryItem
	for _, entry := range raw {
		switch v := entry.(type) {
		case map[string]any:
			name := stringArg(v, "item_name", "item", "name")
			if name == "" {
				continue
			}
			items = append(items, store.InventoryItem{
				ItemName: name,
				Quantity: numberArg(v, 1, "quantity", "qty", "amount"),
				Unit:     stringArg(v, "unit", "units"),
				Category: stringArg(v, "category"),
			})
		case string:
			if strings.TrimSpace(v) != "" {
				items = append(items, store.InventoryItem{ItemName: strings.TrimSpace(v), Quantity: 1})
			}
		}
	}
	return items
}

// itemNamesArg extracts a list of item names, falling back from
// item_names through items (objects or strings) to singular spellings.
func itemNamesArg(args map[string]any) []string {
	var names []string

	appendName := func(entry any) {
		switch v := entry.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				names = append(names, strings.TrimSpace(v))
			}
		case map[string]any:
			if name := stringArg(v, "item", "name", "item_name"); name != "" {
				names = append(names, name)
			}
		}
	}

	if raw, ok := args["item_names"].([]any); ok {
		for _, entry := range raw {
			appendName(entry)
		}
	}
	if len(names) == 0 {
		if raw, ok := args["items"].([]any); ok {
			for _, entry := range raw {
				appendName(entry)
			}
		}
	}
	if len(names) == 0 {
		if single := stringArg(args, "item", "name", "item_name"); single != "" {
			names = append(names, single)
		}
	}
	return names
}

// stringListArg normalizes an array-of-strings parameter.
func stringListArg(args map[string]any, keys ...string) []string {
	for _, key := range keys {
		raw, ok := args[key].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, entry := range raw {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
