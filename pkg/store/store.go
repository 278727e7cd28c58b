// Package store archives fetched trajectories so they can be replayed by id.
//
// Backends:
//   - [MemoryStore]: in-process map, for tests and single-instance servers
//   - [FileStore]: one JSON file per trajectory, for the CLI
//   - [MongoStore]: MongoDB collection, for shared deployments
//
// Get returns a NOT_FOUND coded error for unknown ids.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Trajectory is an archived token stream.
type Trajectory struct {
	ID        string                   `json:"id" bson:"_id"`
	Input     string                   `json:"input" bson:"input"`
	Source    string                   `json:"source,omitempty" bson:"source,omitempty"`
	Tokens    []trajectory.TokenVector `json:"tokens" bson:"tokens"`
	CreatedAt time.Time                `json:"created_at" bson:"created_at"`
}

// NewTrajectory stamps tokens with a fresh id and the current time.
func NewTrajectory(input, source string, tokens []trajectory.TokenVector) *Trajectory {
	return &Trajectory{
		ID:        uuid.NewString(),
		Input:     input,
		Source:    source,
		Tokens:    tokens,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists trajectories by id.
type Store interface {
	Put(ctx context.Context, t *Trajectory) error
	Get(ctx context.Context, id string) (*Trajectory, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Lister is implemented by stores that can enumerate their contents.
type Lister interface {
	// List returns every trajectory, newest first.
	List(ctx context.Context) ([]*Trajectory, error)
}

// Pruner is implemented by stores that can expire old trajectories.
type Pruner interface {
	// Prune removes trajectories created before cutoff and reports how
	// many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// sortNewestFirst orders by CreatedAt, newest first.
func sortNewestFirst(list []*Trajectory) {
	slices.SortFunc(list, func(a, b *Trajectory) int { return b.CreatedAt.Compare(a.CreatedAt) })
}
