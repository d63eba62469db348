package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/miseapp/mise/internal/store"
)

func handleGetPreferences(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	prefs, err := hctx.Store.GetPreferences(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get preferences: %w", err)
	}
	if prefs == nil {
		return "You haven't set up your preferences yet.", nil
	}

	var lines []string
	if len(prefs.DietaryRestrictions) > 0 {
		lines = append(lines, "Dietary: "+strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if len(prefs.HealthGoals) > 0 {
		lines = append(lines, "Goals: "+strings.Join(prefs.HealthGoals, ", "))
	}
	if prefs.FamilySize > 0 {
		lines = append(lines, fmt.Sprintf("Family size: %d", prefs.FamilySize))
	}
	if len(prefs.CuisinePreferences) > 0 {
		lines = append(lines, "Favorite cuisines: "+strings.Join(prefs.CuisinePreferences, ", "))
	}
	if len(lines) == 0 {
		return "Your preferences are set but empty. Tell me about your dietary needs!", nil
	}
	return "Your preferences:\n" + strings.Join(lines, "\n"), nil
}

func handleUpdatePreferences(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	updates := store.Preferences{
		DietaryRestrictions: stringListArg(args, "dietary_restrictions", "restrictions"),
		HealthGoals:         stringListArg(args, "health_goals", "goals"),
		CuisinePreferences:  stringListArg(args, "cuisine_preferences", "cuisines"),
		FamilySize:          int(numberArg(args, 0, "family_size")),
	}

	// Anything the schema doesn't recognize lands in the extension map
	// instead of being dropped.
	known := map[string]bool{
		"dietary_restrictions": true, "restrictions": true,
		"health_goals": true, "goals": true,
		"cuisine_preferences": true, "cuisines": true,
		"family_size": true,
	}
	for key, value := range args {
		if known[key] {
			continue
		}
		if s, ok := value.(string); ok && s != "" {
			if updates.Extra == nil {
				updates.Extra = make(map[string]string)
			}
			updates.Extra[key] = s
		}
	}

	if err := hctx.Store.UpsertPreferences(hctx.UserID, updates); err != nil {
		return "", fmt.Errorf("failed to update preferences: %w", err)
	}

	hctx.Progress("Executed: updateUserPreferences")
	return "Updated your preferences.", nil
}
