package presets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kayz/promptdesk/internal/form"
	_ "modernc.org/sqlite"
)

// Store keeps user presets in SQLite and serves built-ins alongside them.
type Store struct {
	db *sql.DB
}

// Open opens or creates the preset database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under the web server
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS presets (
			name        TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			fields      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns built-in presets followed by user presets, each group sorted by name.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, fields FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	out := Builtins()
	var user []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		user = append(user, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	sort.Slice(user, func(i, j int) bool { return user[i].Name < user[j].Name })
	return append(out, user...), nil
}

// Get returns the named preset. Built-ins take precedence.
func (s *Store) Get(ctx context.Context, name string) (Preset, error) {
	if p, ok := builtin(name); ok {
		return p, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT name, description, fields FROM presets WHERE name = ?`, name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Save inserts or replaces a user preset.
func (s *Store) Save(ctx context.Context, p Preset) error {
	if _, ok := builtin(p.Name); ok {
		return fmt.Errorf("%w: %s", ErrBuiltin, p.Name)
	}
	if !ValidName(p.Name) {
		return fmt.Errorf("invalid preset name %q: use lowercase letters, digits, '.', '_' or '-'", p.Name)
	}

	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return fmt.Errorf("encode preset fields: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (name, description, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`, p.Name, p.Description, string(fields), now, now)
	if err != nil {
		return fmt.Errorf("save preset %s: %w", p.Name, err)
	}
	return nil
}

// Delete removes a user preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, ok := builtin(name); ok {
		return fmt.Errorf("%w: %s", ErrBuiltin, name)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete preset %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (Preset, error) {
	var (
		p      Preset
		fields string
	)
	if err := row.Scan(&p.Name, &p.Description, &fields); err != nil {
		return Preset{}, err
	}
	var in form.Input
	if err := json.Unmarshal([]byte(fields), &in); err != nil {
		return Preset{}, fmt.Errorf("decode preset %s: %w", p.Name, err)
	}
	p.Fields = in
	return p, nil
}
