package store

import (
	"context"
	"time"

	"github.com/Henok-Aragaw/echo/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres).
type Store interface {
	Users() Users
	Fragments() Fragments
	Insights() Insights
	DailyMemories() DailyMemories
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	// Ensure mirrors an auth-service user into the local store, refreshing
	// email and display name if the row already exists.
	Ensure(ctx context.Context, u *model.User) error
	Get(ctx context.Context, userID string) (*model.User, error)
	// Delete removes the user together with all owned fragments, insights
	// and daily memories.
	Delete(ctx context.Context, userID string) error
	// ActiveIDs lists users owning at least one fragment created in
	// [start, end).
	ActiveIDs(ctx context.Context, start, end time.Time) ([]string, error)
}

type Fragments interface {
	Create(ctx context.Context, f *model.Fragment) (*model.Fragment, error)
	// GetByID returns the fragment joined with its insight, if any.
	GetByID(ctx context.Context, userID, fragmentID string) (*model.Fragment, error)
	// List returns fragments newest-first with insights joined.
	List(ctx context.Context, req model.ListFragmentsRequest) ([]*model.Fragment, error)
	// ListWindow returns all of a user's fragments created in [start, end),
	// insights joined, newest-first.
	ListWindow(ctx context.Context, userID string, start, end time.Time) ([]*model.Fragment, error)
}

type Insights interface {
	Create(ctx context.Context, in *model.Insight) (*model.Insight, error)
}

type DailyMemories interface {
	// Upsert inserts or replaces the summary for (UserID, Date). The store's
	// native conflict handling makes concurrent upserts for the same key
	// collapse into one row.
	Upsert(ctx context.Context, m *model.DailyMemory) (*model.DailyMemory, error)
	// GetByDay looks up the row whose date equals the normalized day start.
	GetByDay(ctx context.Context, userID string, day time.Time) (*model.DailyMemory, error)
	// List returns up to limit rows newest-first by (date, id), strictly
	// after the position identified by cursor (a memory id) when non-empty.
	List(ctx context.Context, userID, cursor string, limit int) ([]*model.DailyMemory, error)
}
