package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// FileStore keeps one JSON file per trajectory in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store in baseDir.
// If baseDir is empty, defaults to ~/.config/tokenviz/trajectories/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "tokenviz", "trajectories")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create trajectory dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Trajectory, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeNotFound, "trajectory %q not found", id)
		}
		return nil, fmt.Errorf("read trajectory file: %w", err)
	}

	var t Trajectory
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse trajectory %q", id)
	}
	return &t, nil
}

func (s *FileStore) Put(ctx context.Context, t *Trajectory) error {
	if err := errors.ValidateID(t.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trajectory: %w", err)
	}
	if err := os.WriteFile(s.path(t.ID), data, 0600); err != nil {
		return fmt.Errorf("write trajectory file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove trajectory file: %w", err)
	}
	return nil
}

// Prune removes trajectories created before cutoff and returns how many
// were removed. Unreadable files are skipped.
func (s *FileStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := s.scan(func(path string, t *Trajectory) {
		if t.CreatedAt.Before(cutoff) && os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// List returns every readable trajectory, newest first.
func (s *FileStore) List(ctx context.Context) ([]*Trajectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Trajectory
	err := s.scan(func(_ string, t *Trajectory) { out = append(out, t) })
	sortNewestFirst(out)
	return out, err
}

// scan decodes each trajectory file in the directory. Unreadable files are
// skipped.
func (s *FileStore) scan(fn func(path string, t *Trajectory)) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read trajectory dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var t Trajectory
		if err := json.Unmarshal(data, &t); err != nil {
			continue
		}
		fn(path, &t)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for trajectory files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var (
	_ Store  = (*FileStore)(nil)
	_ Lister = (*FileStore)(nil)
	_ Pruner = (*FileStore)(nil)
)
