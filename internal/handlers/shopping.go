package handlers

import (
	"context"
	"fmt"
	"strings"
)

func handleGetShoppingList(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	items, err := hctx.Store.GetShoppingList(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get shopping list: %w", err)
	}
	if len(items) == 0 {
		return "Your shopping list is empty.", nil
	}

	var b strings.Builder
	b.WriteString("Your shopping list:\n")
	for i, item := range items {
		if item.Quantity > 0 && item.Unit != "" {
			fmt.Fprintf(&b, "%d. %g %s %s\n", i+1, item.Quantity, item.Unit, item.Item)
		} else if item.Quantity > 0 {
			fmt.Fprintf(&b, "%d. %s (%g)\n", i+1, item.Item, item.Quantity)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Item)
		}
	}
	fmt.Fprintf(&b, "Total: %d items", len(items))
	return b.String(), nil
}

func handleAddToShoppingList(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	items := shoppingItemsArg(args)
	if len(items) == 0 {
		return "No valid items to add. Please provide item names.", nil
	}

	if err := hctx.Store.AddShoppingItems(hctx.UserID, items); err != nil {
		return "", fmt.Errorf("failed to add items: %w", err)
	}

	after, err := hctx.Store.GetShoppingList(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to verify shopping list: %w", err)
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Item
	}

	hctx.Progress("Executed: addToShoppingList")
	return fmt.Sprintf("Added %d item(s) to your shopping list: %s. Your list now has %d items.",
		len(items), strings.Join(names, ", "), len(after)), nil
}

func handleRemoveFromShoppingList(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	names := itemNamesArg(args)
	if len(names) == 0 {
		return "No items specified to remove.", nil
	}

	removed, err := hctx.Store.RemoveShoppingItems(hctx.UserID, names)
	if err != nil {
		return "", fmt.Errorf("failed to remove items: %w", err)
	}

	after, err := hctx.Store.GetShoppingList(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to verify shopping list: %w", err)
	}

	hctx.Progress("Executed: removeFromShoppingList")
	if removed == 0 {
		return fmt.Sprintf("Could not find those items in your shopping list. Current list has %d items.", len(after)), nil
	}
	return fmt.Sprintf("Removed %d item(s) from your shopping list. Your list now has %d items.", removed, len(after)), nil
}
