package handlers

import (
	"context"
	"fmt"

	"github.com/miseapp/mise/internal/amazon"
	"github.com/miseapp/mise/internal/store"
)

// Context carries the per-request collaborators a handler may touch.
type Context struct {
	UserID  string
	Store   *store.Store
	Search  *amazon.Client
	LogStep func(string)
}

// Progress reports a user-visible progress line, if a sink is attached.
func (c *Context) Progress(msg string) {
	if c.LogStep != nil {
		c.LogStep(msg)
	}
}

// Func is one named action the executor can invoke. It returns
// human-readable confirmation text; any error is treated uniformly as a
// step failure by the caller.
type Func func(ctx context.Context, args map[string]any, hctx *Context) (string, error)

// Descriptor names and describes a registered action for the planner's
// tool list.
type Descriptor struct {
	Name        string
	Description string
}

// Registry maps action names to handler functions, preserving
// registration order for prompt building.
type Registry struct {
	byName map[string]Func
	order  []Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Func)}
}

func (r *Registry) Register(name, description string, fn Func) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, Descriptor{Name: name, Description: description})
	}
	r.byName[name] = fn
}

// Alias registers a second name for an already-registered action without
// duplicating it in the planner's tool list.
func (r *Registry) Alias(alias, name string) {
	if fn, ok := r.byName[name]; ok {
		r.byName[alias] = fn
	}
}

// Descriptors returns the registered actions in registration order.
func (r *Registry) Descriptors() []Descriptor {
	return r.order
}

// Dispatch runs the named action.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any, hctx *Context) (string, error) {
	fn, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown action: %s", name)
	}
	return fn(ctx, args, hctx)
}

// NewDefaultRegistry wires up the full tool surface over the store and
// the product-search client.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("getShoppingList", "Get all items on the user's shopping list.", handleGetShoppingList)
	r.Register("addToShoppingList", "Add items to the user's shopping list. Parameters: items (array of {item, quantity, unit}).", handleAddToShoppingList)
	r.Register("removeFromShoppingList", "Remove items from the user's shopping list by name. Parameters: item_names (array of strings).", handleRemoveFromShoppingList)
	r.Alias("createShoppingListItems", "addToShoppingList")
	r.Alias("deleteShoppingListItems", "removeFromShoppingList")

	r.Register("getInventory", "Get the user's pantry inventory.", handleGetInventory)
	r.Register("createInventoryItems", "Add or update pantry items. Parameters: items (array of {item_name, quantity, unit, category}).", handleCreateInventoryItems)
	r.Register("deleteInventoryItem", "Delete pantry items by name. Parameters: item_names (array of strings).", handleDeleteInventoryItem)
	r.Alias("updateInventory", "createInventoryItems")

	r.Register("getLeftovers", "Get the user's stored leftovers.", handleGetLeftovers)
	r.Register("addLeftover", "Store a leftover meal. Parameters: meal_name, servings, notes.", handleAddLeftover)
	r.Register("adjustLeftoverServings", "Change the serving count of a leftover. Parameters: meal_name, delta.", handleAdjustLeftoverServings)
	r.Register("removeLeftover", "Remove a leftover by meal name. Parameters: meal_name.", handleRemoveLeftover)

	r.Register("getUserPreferences", "Get the user's dietary preferences.", handleGetPreferences)
	r.Register("updateUserPreferences", "Update dietary preferences. Parameters: dietary_restrictions, health_goals, cuisine_preferences (arrays), family_size (number).", handleUpdatePreferences)

	r.Register("searchAmazonProduct", "Search Amazon for a product. Parameters: query, country.", handleSearchProduct)
	r.Register("searchShoppingListOnAmazon", "Search Amazon for every item on the user's shopping list.", handleSearchShoppingList)
	r.Register("getAmazonSearchResults", "Show cached Amazon search results.", handleGetSearchResults)
	r.Register("clearAmazonSearchCache", "Clear cached Amazon search results. Parameters: query (optional).", handleClearSearchCache)

	return r
}
