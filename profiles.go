package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// serverProfile is a remembered connection target: a clinic server the
// editor has been pointed at before.
type serverProfile struct {
	Name     string
	BaseURL  string
	LastUsed time.Time
}

type profileStore struct {
	db   *sql.DB
	path string
}

func openProfileStore() (*profileStore, error) {
	dir := resolveConfigDir()
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dir, "profiles.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateProfileStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &profileStore{db: db, path: sqlitePath}, nil
}

func migrateProfileStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS profiles (
			base_url TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			last_used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("profile store migration failed: %w", err)
		}
	}
	return nil
}

func (s *profileStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List returns the known profiles, most recently used first.
func (s *profileStore) List() ([]serverProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT base_url, COALESCE(NULLIF(name, ''), base_url), last_used_at
		FROM profiles ORDER BY last_used_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []serverProfile
	for rows.Next() {
		var (
			baseURL  string
			name     string
			lastUsed time.Time
		)
		if err := rows.Scan(&baseURL, &name, &lastUsed); err != nil {
			return nil, err
		}
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			continue
		}
		profiles = append(profiles, serverProfile{
			Name:     name,
			BaseURL:  baseURL,
			LastUsed: lastUsed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Touch records a profile as used now, creating it when new.
func (s *profileStore) Touch(baseURL string) error {
	if s == nil || s.db == nil {
		return nil
	}
	clean := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if clean == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO profiles (base_url, name, last_used_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(base_url) DO UPDATE SET last_used_at = CURRENT_TIMESTAMP`, clean, labelForServer(clean))
	return err
}

func (s *profileStore) Remove(baseURL string) error {
	if s == nil || s.db == nil {
		return nil
	}
	clean := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if clean == "" {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM profiles WHERE base_url = ?`, clean)
	return err
}

func labelForServer(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return baseURL
	}
	return parsed.Host
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
