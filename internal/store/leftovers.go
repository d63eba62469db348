package store

// GetLeftovers returns all leftovers for a user, newest first.
func (s *Store) GetLeftovers(userID string) ([]Leftover, error) {
	rows, err := s.DB.Query(`
		SELECT id, meal_name, servings, notes, date_created
		FROM leftovers WHERE user_id = ? ORDER BY date_created DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Leftover
	for rows.Next() {
		var l Leftover
		if err := rows.Scan(&l.ID, &l.MealName, &l.Servings, &l.Notes, &l.DateCreated); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// AddLeftover inserts a leftover and returns its generated ID.
func (s *Store) AddLeftover(userID string, l Leftover) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO leftovers (user_id, meal_name, servings, notes) VALUES (?, ?, ?, ?)`,
		userID, l.MealName, l.Servings, l.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateLeftoverServings sets the serving count for a leftover.
func (s *Store) UpdateLeftoverServings(id int64, servings float64) error {
	_, err := s.DB.Exec(`UPDATE leftovers SET servings = ? WHERE id = ?`, servings, id)
	return err
}

// DeleteLeftover removes a leftover by ID.
func (s *Store) DeleteLeftover(id int64) error {
	_, err := s.DB.Exec(`DELETE FROM leftovers WHERE id = ?`, id)
	return err
}

// FindLeftoverByName returns the newest leftover whose meal name matches
// case-insensitively, or nil if none does.
func (s *Store) FindLeftoverByName(userID, mealName string) (*Leftover, error) {
	items, err := s.GetLeftovers(userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if normalizeName(items[i].MealName) == normalizeName(mealName) {
			return &items[i], nil
		}
	}
	return nil, nil
}
