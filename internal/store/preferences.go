package store

import (
	"database/sql"
	"encoding/json"
)

// GetPreferences returns a user's preferences, nil if never set.
func (s *Store) GetPreferences(userID string) (*Preferences, error) {
	var raw string
	err := s.DB.QueryRow(`SELECT data FROM preferences WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpsertPreferences merges updates into the stored row: array-valued
// fields are unioned, scalars are replaced, extension entries overwrite
// by key.
func (s *Store) UpsertPreferences(userID string, updates Preferences) error {
	current, err := s.GetPreferences(userID)
	if err != nil {
		return err
	}
	if current == nil {
		current = &Preferences{}
	}

	current.DietaryRestrictions = mergeValues(current.DietaryRestrictions, updates.DietaryRestrictions)
	current.HealthGoals = mergeValues(current.HealthGoals, updates.HealthGoals)
	current.CuisinePreferences = mergeValues(current.CuisinePreferences, updates.CuisinePreferences)
	if updates.FamilySize > 0 {
		current.FamilySize = updates.FamilySize
	}
	if len(updates.Extra) > 0 {
		if current.Extra == nil {
			current.Extra = make(map[string]string)
		}
		for k, v := range updates.Extra {
			current.Extra[k] = v
		}
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(`
		INSERT INTO preferences (user_id, data) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data`,
		userID, string(raw))
	return err
}

func mergeValues(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[normalizeName(v)] = true
	}
	for _, v := range incoming {
		if !seen[normalizeName(v)] {
			existing = append(existing, v)
			seen[normalizeName(v)] = true
		}
	}
	return existing
}
