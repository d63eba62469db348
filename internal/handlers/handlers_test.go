package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/miseapp/mise/internal/store"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Context{UserID: "u1", Store: db}
}

func TestRegistry_DispatchAndAliases(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)

	// The alias must resolve to the same handler.
	args := map[string]any{"items": []any{"milk"}}
	if _, err := r.Dispatch(context.Background(), "createShoppingListItems", args, hctx); err != nil {
		t.Fatalf("Alias dispatch failed: %v", err)
	}

	items, _ := hctx.Store.GetShoppingList("u1")
	if len(items) != 1 || items[0].Item != "milk" {
		t.Errorf("Alias did not reach the handler: %v", items)
	}

	// Aliases must not inflate the planner's tool list.
	for _, d := range r.Descriptors() {
		if d.Name == "createShoppingListItems" {
			t.Errorf("Alias leaked into descriptors")
		}
	}

	if _, err := r.Dispatch(context.Background(), "fly", nil, hctx); err == nil {
		t.Error("Expected error for unknown action")
	}
}

func TestAddToShoppingList_VerifiesCount(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)

	args := map[string]any{"items": []any{
		map[string]any{"item": "milk", "quantity": 1.0, "unit": "l"},
		map[string]any{"name": "eggs", "qty": 12.0},
	}}
	result, err := r.Dispatch(context.Background(), "addToShoppingList", args, hctx)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(result, "Your list now has 2 items") {
		t.Errorf("Confirmation missing verified count: %q", result)
	}
}

func TestAddToShoppingList_NoItems(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)

	result, err := r.Dispatch(context.Background(), "addToShoppingList", map[string]any{}, hctx)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(result, "No valid items") {
		t.Errorf("Expected a gentle nudge, got %q", result)
	}
}

func TestRemoveFromShoppingList_SingularAlias(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)
	hctx.Store.AddShoppingItems("u1", []store.ShoppingItem{{Item: "milk", Quantity: 1}})

	// A singular "item" parameter must work like "item_names".
	result, err := r.Dispatch(context.Background(), "removeFromShoppingList", map[string]any{"item": "milk"}, hctx)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(result, "Removed 1 item(s)") {
		t.Errorf("Unexpected result: %q", result)
	}
}

func TestAdjustLeftoverServings_RemovesWhenFinished(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)
	hctx.Store.AddLeftover("u1", store.Leftover{MealName: "chili", Servings: 2})

	result, err := r.Dispatch(context.Background(), "adjustLeftoverServings",
		map[string]any{"meal_name": "chili", "delta": -2.0}, hctx)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(result, "all finished") {
		t.Errorf("Expected finished message, got %q", result)
	}

	leftovers, _ := hctx.Store.GetLeftovers("u1")
	if len(leftovers) != 0 {
		t.Errorf("Finished leftover should be deleted, got %v", leftovers)
	}
}

func TestUpdatePreferences_ExtensionFields(t *testing.T) {
	r := NewDefaultRegistry()
	hctx := testContext(t)

	args := map[string]any{
		"dietary_restrictions": []any{"vegan"},
		"spice_level":          "hot",
	}
	if _, err := r.Dispatch(context.Background(), "updateUserPreferences", args, hctx); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	prefs, _ := hctx.Store.GetPreferences("u1")
	if prefs == nil || len(prefs.DietaryRestrictions) != 1 {
		t.Fatalf("Preferences not saved: %+v", prefs)
	}
	if prefs.Extra["spice_level"] != "hot" {
		t.Errorf("Unknown string args should land in Extra, got %v", prefs.Extra)
	}
}

func TestParamAliases(t *testing.T) {
	// quantity aliases
	items := shoppingItemsArg(map[string]any{"items": []any{
		map[string]any{"item_name": "rice", "amount": 2.0, "units": "kg"},
	}})
	if len(items) != 1 || items[0].Item != "rice" || items[0].Quantity != 2 || items[0].Unit != "kg" {
		t.Errorf("Alias resolution failed: %+v", items)
	}

	// bare strings default to quantity 1
	items = shoppingItemsArg(map[string]any{"items": []any{"salt"}})
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Errorf("Bare string items should default quantity to 1: %+v", items)
	}

	// item_names wins over items for name extraction
	names := itemNamesArg(map[string]any{
		"item_names": []any{"a", "b"},
		"items":      []any{"c"},
	})
	if len(names) != 2 {
		t.Errorf("item_names should take precedence: %v", names)
	}
}
