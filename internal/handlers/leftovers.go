package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/miseapp/mise/internal/store"
)

func handleGetLeftovers(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	items, err := hctx.Store.GetLeftovers(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get leftovers: %w", err)
	}
	if len(items) == 0 {
		return "No leftovers right now.", nil
	}

	var b strings.Builder
	b.WriteString("Your leftovers:\n")
	for i, l := range items {
		fmt.Fprintf(&b, "%d. %s - %g servings", i+1, l.MealName, l.Servings)
		if l.Notes != "" {
			fmt.Fprintf(&b, " (%s)", l.Notes)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func handleAddLeftover(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	mealName := stringArg(args, "meal_name", "meal", "name")
	if mealName == "" {
		return "Please tell me the name of the leftover meal.", nil
	}

	leftover := store.Leftover{
		MealName: mealName,
		Servings: numberArg(args, 1, "servings", "portions"),
		Notes:    stringArg(args, "notes", "note"),
	}

	id, err := hctx.Store.AddLeftover(hctx.UserID, leftover)
	if err != nil {
		return "", fmt.Errorf("failed to add leftover: %w", err)
	}

	hctx.Progress("Executed: addLeftover")
	return fmt.Sprintf("Saved leftover '%s' (%g servings, id %d).", mealName, leftover.Servings, id), nil
}

func handleAdjustLeftoverServings(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	mealName := stringArg(args, "meal_name", "meal", "name")
	if mealName == "" {
		return "Please tell me which leftover to adjust.", nil
	}
	delta := numberArg(args, 0, "delta", "change", "servings")
	if delta == 0 {
		return "Please tell me how many servings to add or subtract.", nil
	}

	leftover, err := hctx.Store.FindLeftoverByName(hctx.UserID, mealName)
	if err != nil {
		return "", fmt.Errorf("failed to look up leftover: %w", err)
	}
	if leftover == nil {
		return fmt.Sprintf("I couldn't find a leftover called '%s'.", mealName), nil
	}

	remaining := leftover.Servings + delta
	if remaining <= 0 {
		if err := hctx.Store.DeleteLeftover(leftover.ID); err != nil {
			return "", fmt.Errorf("failed to remove finished leftover: %w", err)
		}
		hctx.Progress("Executed: adjustLeftoverServings")
		return fmt.Sprintf("'%s' is all finished - removed it from your leftovers.", leftover.MealName), nil
	}

	if err := hctx.Store.UpdateLeftoverServings(leftover.ID, remaining); err != nil {
		return "", fmt.Errorf("failed to update leftover: %w", err)
	}
	hctx.Progress("Executed: adjustLeftoverServings")
	return fmt.Sprintf("'%s' now has %g servings left.", leftover.MealName, remaining), nil
}

func handleRemoveLeftover(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	mealName := stringArg(args, "meal_name", "meal", "name")
	if mealName == "" {
		return "Please tell me which leftover to remove.", nil
	}

	leftover, err := hctx.Store.FindLeftoverByName(hctx.UserID, mealName)
	if err != nil {
		return "", fmt.Errorf("failed to look up leftover: %w", err)
	}
	if leftover == nil {
		return fmt.Sprintf("I couldn't find a leftover called '%s'.", mealName), nil
	}

	if err := hctx.Store.DeleteLeftover(leftover.ID); err != nil {
		return "", fmt.Errorf("failed to remove leftover: %w", err)
	}
	hctx.Progress("Executed: removeLeftover")
	return fmt.Sprintf("Removed leftover '%s'.", leftover.MealName), nil
}
