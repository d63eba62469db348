package store

import (
	"database/sql"
	"encoding/json"
	"strings"
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetShoppingList returns the user's shopping list, empty if none exists.
func (s *Store) GetShoppingList(userID string) ([]ShoppingItem, error) {
	var raw string
	err := s.DB.QueryRow(`SELECT items FROM shopping_lists WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []ShoppingItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddShoppingItems merges new items into the list. Names match
// case-insensitively: quantities are summed when units match and replaced
// when they differ, so "Milk" and "milk" always end up as one entry.
func (s *Store) AddShoppingItems(userID string, items []ShoppingItem) error {
	current, err := s.GetShoppingList(userID)
	if err != nil {
		return err
	}

	for _, item := range items {
		name := normalizeName(item.Item)
		if name == "" {
			continue
		}
		merged := false
		for i := range current {
			if normalizeName(current[i].Item) != name {
				continue
			}
			if strings.EqualFold(current[i].Unit, item.Unit) {
				current[i].Quantity += item.Quantity
			} else {
				current[i].Quantity = item.Quantity
				current[i].Unit = item.Unit
			}
			merged = true
			break
		}
		if !merged {
			current = append(current, item)
		}
	}

	return s.saveShoppingList(userID, current)
}

// RemoveShoppingItems removes items by case-insensitive name match.
// Returns the number of entries removed.
func (s *Store) RemoveShoppingItems(userID string, itemNames []string) (int, error) {
	current, err := s.GetShoppingList(userID)
	if err != nil {
		return 0, err
	}

	toRemove := make(map[string]bool, len(itemNames))
	for _, n := range itemNames {
		toRemove[normalizeName(n)] = true
	}

	filtered := current[:0]
	for _, item := range current {
		if !toRemove[normalizeName(item.Item)] {
			filtered = append(filtered, item)
		}
	}

	removed := len(current) - len(filtered)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveShoppingList(userID, filtered)
}

func (s *Store) saveShoppingList(userID string, items []ShoppingItem) error {
	if items == nil {
		items = []ShoppingItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(`
		INSERT INTO shopping_lists (user_id, items, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at`,
		userID, string(raw))
	return err
}
