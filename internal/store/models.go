package store

import "time"

// ShoppingItem is one entry in a user's shopping list. The list is stored
// as a JSON array in a single row per user.
type ShoppingItem struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// InventoryItem is one pantry ingredient, keyed by user and item name.
type InventoryItem struct {
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
}

// Leftover is a stored prepared meal.
type Leftover struct {
	ID          int64     `json:"id"`
	MealName    string    `json:"meal_name"`
	Servings    float64   `json:"servings"`
	Notes       string    `json:"notes,omitempty"`
	DateCreated time.Time `json:"date_created"`
}

// Preferences holds a user's dietary profile. Extra captures fields the
// schema doesn't know about so nothing a client sends is silently dropped.
type Preferences struct {
	DietaryRestrictions []string          `json:"dietary_restrictions,omitempty"`
	HealthGoals         []string          `json:"health_goals,omitempty"`
	CuisinePreferences  []string          `json:"cuisine_preferences,omitempty"`
	FamilySize          int               `json:"family_size,omitempty"`
	Extra               map[string]string `json:"extra,omitempty"`
}

// CachedSearch is a saved product-search result set.
type CachedSearch struct {
	Query    string    `json:"query"`
	Country  string    `json:"country"`
	Results  []byte    `json:"results"`
	CachedAt time.Time `json:"cached_at"`
}
