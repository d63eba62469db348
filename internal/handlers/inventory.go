package handlers

import (
	"context"
	"fmt"
	"strings"
)

func handleGetInventory(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	items, err := hctx.Store.GetInventory(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get inventory: %w", err)
	}
	if len(items) == 0 {
		return "Your pantry is empty.", nil
	}

	var b strings.Builder
	b.WriteString("Your pantry:\n")
	for i, item := range items {
		if item.Unit != "" {
			fmt.Fprintf(&b, "%d. %s - %g %s\n", i+1, item.ItemName, item.Quantity, item.Unit)
		} else {
			fmt.Fprintf(&b, "%d. %s (%g)\n", i+1, item.ItemName, item.Quantity)
		}
	}
	fmt.Fprintf(&b, "Total: %d ingredients", len(items))
	return b.String(), nil
}

func handleCreateInventoryItems(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	items := inventoryItemsArg(args)
	if len(items) == 0 {
		return "No valid items to add to your inventory.", nil
	}

	if err := hctx.Store.UpsertInventory(hctx.UserID, items); err != nil {
		return "", fmt.Errorf("failed to update inventory: %w", err)
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.ItemName
	}

	hctx.Progress("Executed: createInventoryItems")
	return fmt.Sprintf("Updated your pantry with %d item(s): %s.", len(items), strings.Join(names, ", ")), nil
}

func handleDeleteInventoryItem(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	names := itemNamesArg(args)
	if len(names) == 0 {
		return "No items specified to delete.", nil
	}

	deleted, err := hctx.Store.DeleteInventoryItems(hctx.UserID, names)
	if err != nil {
		return "", fmt.Errorf("failed to delete inventory items: %w", err)
	}

	hctx.Progress("Executed: deleteInventoryItem")
	if deleted == 0 {
		return "Could not find those items in your pantry.", nil
	}
	return fmt.Sprintf("Removed %d item(s) from your pantry.", deleted), nil
}
