package store

// GetInventory returns all pantry items for a user, ordered by name.
func (s *Store) GetInventory(userID string) ([]InventoryItem, error) {
	rows, err := s.DB.Query(`
		SELECT item_name, quantity, unit, category
		FROM inventory WHERE user_id = ? ORDER BY item_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ItemName, &it.Quantity, &it.Unit, &it.Category); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertInventory inserts or replaces items keyed by user and item name.
func (s *Store) UpsertInventory(userID string, items []InventoryItem) error {
	for _, it := range items {
		_, err := s.DB.Exec(`
			INSERT INTO inventory (user_id, item_name, quantity, unit, category) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id, item_name) DO UPDATE SET
				quantity = excluded.quantity, unit = excluded.unit, category = excluded.category`,
			userID, it.ItemName, it.Quantity, it.Unit, it.Category)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteInventoryItems removes items by case-insensitive name match.
// Returns the number of rows deleted.
func (s *Store) DeleteInventoryItems(userID string, itemNames []string) (int, error) {
	deleted := 0
	for _, name := range itemNames {
		res, err := s.DB.Exec(`
			DELETE FROM inventory WHERE user_id = ? AND lower(item_name) = lower(?)`,
			userID, name)
		if err != nil {
			return deleted, err
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
	return deleted, nil
}
