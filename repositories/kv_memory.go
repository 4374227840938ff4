package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type memoryKeyValueStore struct {
	mu      sync.RWMutex
	scalars map[string]string
	arrays  map[string][]string
}

// NewMemoryKeyValueStore returns a process-local store, used by tests and
// when no database is configured.
func NewMemoryKeyValueStore() KeyValueStore {
	return &memoryKeyValueStore{
		scalars: make(map[string]string),
		arrays:  make(map[string][]string),
	}
}

func (s *memoryKeyValueStore) SetString(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[key] = value
	return nil
}

func (s *memoryKeyValueStore) GetString(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scalars[key]
	return v, ok, nil
}

func (s *memoryKeyValueStore) SetInt(ctx context.Context, key string, value int) error {
	return s.SetString(ctx, key, strconv.Itoa(value))
}

func (s *memoryKeyValueStore) GetInt(ctx context.Context, key string) (int, bool, error) {
	raw, ok, _ := s.GetString(ctx, key)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("key %s does not hold an int: %w", key, err)
	}
	return v, true, nil
}

func (s *memoryKeyValueStore) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

func (s *memoryKeyValueStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	raw, ok, _ := s.GetString(ctx, key)
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("key %s does not hold a bool: %w", key, err)
	}
	return v, true, nil
}

func (s *memoryKeyValueStore) SetStringArray(_ context.Context, key string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrays[key] = append([]string{}, values...)
	return nil
}

func (s *memoryKeyValueStore) GetStringArray(_ context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.arrays[key]
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, v...), true, nil
}

func (s *memoryKeyValueStore) SetIntArray(ctx context.Context, key string, values []int) error {
	return s.SetStringArray(ctx, key, intsToStrings(values))
}

func (s *memoryKeyValueStore) GetIntArray(ctx context.Context, key string) ([]int, bool, error) {
	raw, ok, _ := s.GetStringArray(ctx, key)
	if !ok {
		return nil, false, nil
	}
	values, err := stringsToInts(raw)
	if err != nil {
		return nil, false, fmt.Errorf("array %s: %w", key, err)
	}
	return values, true, nil
}

func (s *memoryKeyValueStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.scalars {
		if strings.HasPrefix(k, prefix) {
			delete(s.scalars, k)
		}
	}
	for k := range s.arrays {
		if strings.HasPrefix(k, prefix) {
			delete(s.arrays, k)
		}
	}
	return nil
}

// Atomically applies fn to a staging copy and publishes it only when fn
// succeeds.
func (s *memoryKeyValueStore) Atomically(_ context.Context, fn func(KeyValueStore) error) error {
	s.mu.RLock()
	staging := &memoryKeyValueStore{
		scalars: make(map[string]string, len(s.scalars)),
		arrays:  make(map[string][]string, len(s.arrays)),
	}
	for k, v := range s.scalars {
		staging.scalars[k] = v
	}
	for k, v := range s.arrays {
		staging.arrays[k] = v
	}
	s.mu.RUnlock()

	if err := fn(staging); err != nil {
		return err
	}

	s.mu.Lock()
	s.scalars = staging.scalars
	s.arrays = staging.arrays
	s.mu.Unlock()
	return nil
}
