package store

import "database/sql"

// GetCachedSearch returns a cached product search, nil on a cache miss.
func (s *Store) GetCachedSearch(userID, query, country string) (*CachedSearch, error) {
	var c CachedSearch
	var raw string
	err := s.DB.QueryRow(`
		SELECT query, country, results, cached_at
		FROM search_cache WHERE user_id = ? AND lower(query) = lower(?) AND country = ?`,
		userID, query, country).Scan(&c.Query, &c.Country, &raw, &c.CachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Results = []byte(raw)
	return &c, nil
}

// SaveSearch caches a product search result set, replacing any prior
// entry for the same user, query, and country.
func (s *Store) SaveSearch(userID, query, country string, results []byte) error {
	_, err := s.DB.Exec(`
		INSERT INTO search_cache (user_id, query, country, results, cached_at) VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id, query, country) DO UPDATE SET results = excluded.results, cached_at = excluded.cached_at`,
		userID, query, country, string(results))
	return err
}

// ListCachedSearches returns all cached searches for a user.
func (s *Store) ListCachedSearches(userID string) ([]CachedSearch, error) {
	rows, err := s.DB.Query(`
		SELECT query, country, results, cached_at FROM search_cache
		WHERE user_id = ? ORDER BY cached_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CachedSearch
	for rows.Next() {
		var c CachedSearch
		var raw string
		if err := rows.Scan(&c.Query, &c.Country, &raw, &c.CachedAt); err != nil {
			return nil, err
		}
		c.Results = []byte(raw)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClearSearchCache deletes cached searches. Empty query clears every
// entry for the user. Returns the number of rows deleted.
func (s *Store) ClearSearchCache(userID, query, country string) (int, error) {
	var res sql.Result
	var err error
	if query == "" {
		res, err = s.DB.Exec(`DELETE FROM search_cache WHERE user_id = ?`, userID)
	} else {
		res, err = s.DB.Exec(`
			DELETE FROM search_cache WHERE user_id = ? AND lower(query) = lower(?) AND country = ?`,
			userID, query, country)
	}
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
