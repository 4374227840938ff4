package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"
)

// KeyValueStore persists scalars and indexed arrays. Getters report whether
// the key exists; an empty array that was stored is found.
type KeyValueStore interface {
	SetString(ctx context.Context, key, value string) error
	GetString(ctx context.Context, key string) (string, bool, error)
	SetInt(ctx context.Context, key string, value int) error
	GetInt(ctx context.Context, key string) (int, bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	GetBool(ctx context.Context, key string) (bool, bool, error)
	SetStringArray(ctx context.Context, key string, values []string) error
	GetStringArray(ctx context.Context, key string) ([]string, bool, error)
	SetIntArray(ctx context.Context, key string, values []int) error
	GetIntArray(ctx context.Context, key string) ([]int, bool, error)
	DeletePrefix(ctx context.Context, prefix string) error
	// Atomically runs fn against a store whose writes commit together.
	Atomically(ctx context.Context, fn func(KeyValueStore) error) error
}

type sqlKeyValueStore struct {
	db      *sql.DB
	exec    SQLExecutor
	dialect Dialect
}

func NewSQLKeyValueStore(db *sql.DB, dialect Dialect) KeyValueStore {
	return &sqlKeyValueStore{db: db, exec: db, dialect: dialect}
}

func (s *sqlKeyValueStore) q(query string) string {
	return rebind(s.dialect, query)
}

func (s *sqlKeyValueStore) SetString(ctx context.Context, key, value string) error {
	query := s.q(`
		INSERT INTO kv_scalars (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if _, err := s.exec.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

func (s *sqlKeyValueStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.exec.QueryRowContext(ctx, s.q(`SELECT value FROM kv_scalars WHERE key = $1`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *sqlKeyValueStore) SetInt(ctx context.Context, key string, value int) error {
	return s.SetString(ctx, key, strconv.Itoa(value))
}

func (s *sqlKeyValueStore) GetInt(ctx context.Context, key string) (int, bool, error) {
	raw, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("key %s does not hold an int: %w", key, err)
	}
	return v, true, nil
}

func (s *sqlKeyValueStore) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

func (s *sqlKeyValueStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	raw, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return false, ok, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("key %s does not hold a bool: %w", key, err)
	}
	return v, true, nil
}

// SetStringArray replaces the array. Its length is kept as a scalar under
// the same key so empty arrays survive a round trip.
func (s *sqlKeyValueStore) SetStringArray(ctx context.Context, key string, values []string) error {
	if _, err := s.exec.ExecContext(ctx, s.q(`DELETE FROM kv_arrays WHERE key = $1`), key); err != nil {
		return fmt.Errorf("failed to clear array %s: %w", key, err)
	}

	if len(values) > 0 {
		var err error
		switch s.dialect {
		case DialectPostgres:
			_, err = s.exec.ExecContext(ctx, `
				INSERT INTO kv_arrays (key, idx, value)
				SELECT $1, t.ord - 1, t.val
				FROM unnest($2::text[]) WITH ORDINALITY AS t(val, ord)`,
				key, pq.Array(values))
		default:
			query := s.q(`INSERT INTO kv_arrays (key, idx, value) VALUES ($1, $2, $3)`)
			for i, v := range values {
				if _, err = s.exec.ExecContext(ctx, query, key, i, v); err != nil {
					break
				}
			}
		}
		if err != nil {
			return fmt.Errorf("failed to store array %s: %w", key, err)
		}
	}
	return s.SetInt(ctx, key, len(values))
}

func (s *sqlKeyValueStore) GetStringArray(ctx context.Context, key string) ([]string, bool, error) {
	n, ok, err := s.GetInt(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	values := make([]string, 0, n)
	switch s.dialect {
	case DialectPostgres:
		var arr pq.StringArray
		err = s.exec.QueryRowContext(ctx,
			`SELECT COALESCE(array_agg(value ORDER BY idx), '{}') FROM kv_arrays WHERE key = $1`, key).Scan(&arr)
		values = append(values, arr...)
	default:
		var rows *sql.Rows
		rows, err = s.exec.QueryContext(ctx, s.q(`SELECT value FROM kv_arrays WHERE key = $1 ORDER BY idx`), key)
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var v string
				if err = rows.Scan(&v); err != nil {
					break
				}
				values = append(values, v)
			}
			if err == nil {
				err = rows.Err()
			}
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read array %s: %w", key, err)
	}
	if len(values) != n {
		return nil, false, fmt.Errorf("array %s has %d entries, expected %d", key, len(values), n)
	}
	return values, true, nil
}

func (s *sqlKeyValueStore) SetIntArray(ctx context.Context, key string, values []int) error {
	return s.SetStringArray(ctx, key, intsToStrings(values))
}

func (s *sqlKeyValueStore) GetIntArray(ctx context.Context, key string) ([]int, bool, error) {
	raw, ok, err := s.GetStringArray(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	values, err := stringsToInts(raw)
	if err != nil {
		return nil, false, fmt.Errorf("array %s: %w", key, err)
	}
	return values, true, nil
}

func (s *sqlKeyValueStore) DeletePrefix(ctx context.Context, prefix string) error {
	for _, table := range []string{"kv_scalars", "kv_arrays"} {
		query := s.q(fmt.Sprintf(`DELETE FROM %s WHERE substr(key, 1, $1) = $2`, table))
		if _, err := s.exec.ExecContext(ctx, query, len(prefix), prefix); err != nil {
			return fmt.Errorf("failed to delete %s* from %s: %w", prefix, table, err)
		}
	}
	return nil
}

func (s *sqlKeyValueStore) Atomically(ctx context.Context, fn func(KeyValueStore) error) (err error) {
	if _, inTx := s.exec.(*sql.Tx); inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	err = fn(&sqlKeyValueStore{db: s.db, exec: tx, dialect: s.dialect})
	return err
}

func intsToStrings(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

func stringsToInts(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("entry %d is not an int: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
