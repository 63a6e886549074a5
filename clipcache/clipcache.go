// Package clipcache persists synthesized clips in a local SQLite database so
// reopening a quiz batch, or regenerating one item, reuses audio instead of
// calling the speech API again. Cache lookups are keyed by model, voice and
// spoken text; any of them changing means a fresh synthesis.
//
// The cache is best-effort. Callers log failures and continue without it.
package clipcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/quizvoice/quizvoice/speech"
	"github.com/quizvoice/quizvoice/wav"
)

// Store is a SQLite-backed clip cache.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the per-user cache database location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(dir, "quizvoice", "clips.db"), nil
}

// Open opens or creates the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS clips (
    key TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    voice TEXT NOT NULL,
    text TEXT NOT NULL,
    mime_type TEXT,
    pcm BLOB NOT NULL,
    sample_rate INTEGER NOT NULL,
    channels INTEGER NOT NULL,
    bits INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Key derives the cache key for a clip.
func Key(model, voice, text string) string {
	h := sha256.Sum256([]byte(model + "|" + voice + "|" + text))
	return hex.EncodeToString(h[:])
}

// Get returns the cached clip for (model, voice, text), or ok=false on a miss.
func (s *Store) Get(ctx context.Context, model, voice, text string) (*speech.Audio, bool, error) {
	var (
		pcm  []byte
		mime string
		f    wav.Format
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pcm, mime_type, sample_rate, channels, bits FROM clips WHERE key = ?`,
		Key(model, voice, text),
	).Scan(&pcm, &mime, &f.SampleRate, &f.Channels, &f.BitsPerSample)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return &speech.Audio{PCM: pcm, Format: f, MimeType: mime}, true, nil
}

// Put stores a clip, replacing any previous entry for the same key.
func (s *Store) Put(ctx context.Context, model, voice, text string, audio *speech.Audio) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO clips (key, model, voice, text, mime_type, pcm, sample_rate, channels, bits)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Key(model, voice, text), model, voice, text, audio.MimeType, audio.PCM,
		audio.Format.SampleRate, audio.Format.Channels, audio.Format.BitsPerSample)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Count returns the number of cached clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Clear removes every cached clip.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clips`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
