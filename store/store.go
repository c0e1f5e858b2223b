// Package store persists the durable slice of game state in sqlite: a small
// settings key-value table (unlocked ceiling, credential, provider) and an
// append-only log of judged attempts. Transcripts are never stored.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Settings keys. The game reads them through LoadProgress, not directly.
const (
	keyMaxUnlockedLevel = "max_unlocked_level"
	keyCredential       = "credential"
	keyProvider         = "provider"
)

// Store handles persistence of game settings and attempt history.
// It implements game.Persister.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store on an already-migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadProgress returns the persisted unlocked ceiling and provider
// configuration. Absent values come back as their zero state with
// maxUnlocked = 1.
func (s *Store) LoadProgress(ctx context.Context) (maxUnlocked int, credential, provider string, err error) {
	maxUnlocked = 1

	raw, ok, err := s.getSetting(ctx, keyMaxUnlockedLevel)
	if err != nil {
		return 0, "", "", err
	}
	if ok {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, "", "", fmt.Errorf("parse %s: %w", keyMaxUnlockedLevel, convErr)
		}
		maxUnlocked = parsed
	}

	credential, _, err = s.getSetting(ctx, keyCredential)
	if err != nil {
		return 0, "", "", err
	}
	provider, _, err = s.getSetting(ctx, keyProvider)
	if err != nil {
		return 0, "", "", err
	}

	return maxUnlocked, credential, provider, nil
}

// SaveProgress writes the unlocked ceiling and provider configuration.
func (s *Store) SaveProgress(ctx context.Context, maxUnlocked int, credential, provider string) error {
	if err := s.setSetting(ctx, keyMaxUnlockedLevel, strconv.Itoa(maxUnlocked)); err != nil {
		return err
	}
	if err := s.setSetting(ctx, keyCredential, credential); err != nil {
		return err
	}
	return s.setSetting(ctx, keyProvider, provider)
}

// RecordAttempt appends one judged turn to the attempt log.
func (s *Store) RecordAttempt(ctx context.Context, level int, provider string, passed bool) error {
	now := time.Now().Unix()
	query := sq.Insert("attempts").
		Columns("id", "level", "provider", "passed", "created_at").
		Values(uuid.NewString(), level, provider, passed, now)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryStr, args...)
	return err
}

// AttemptCounts returns the number of logged attempts per level.
func (s *Store) AttemptCounts(ctx context.Context) (map[int]int, error) {
	query := sq.Select("level", "COUNT(*)").
		From("attempts").
		GroupBy("level")

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // No remedy for rows close errors

	counts := make(map[int]int)
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[level] = count
	}
	return counts, rows.Err()
}

func (s *Store) getSetting(ctx context.Context, key string) (string, bool, error) {
	query := sq.Select("value").
		From("settings").
		Where(sq.Eq{"key": key})

	queryStr, args, err := query.ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, queryStr, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	now := time.Now().Unix()
	query := sq.Insert("settings").
		Columns("key", "value", "updated_at").
		Values(key, value, now)

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	// SQLite requires "OR REPLACE" to come after "INSERT", so we rewrite the
	// statement squirrel produced.
	queryStr = strings.Replace(queryStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)

	_, err = s.db.ExecContext(ctx, queryStr, args...)
	return err
}
