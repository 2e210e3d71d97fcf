package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Henok-Aragaw/echo/internal/insight"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store"
)

// EchoService compiles daily memories and serves the echo read paths.
type EchoService struct {
	store    store.Store
	insights *insight.Generator
	log      zerolog.Logger
	loc      *time.Location
	pageSize int

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewEchoService(s store.Store, gen *insight.Generator, loc *time.Location, pageSize int, log zerolog.Logger) *EchoService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &EchoService{
		store:    s,
		insights: gen,
		log:      log,
		loc:      loc,
		pageSize: pageSize,
		Now:      time.Now,
	}
}

// CreateMemoryForUser generates-or-refreshes the user's memory for the
// calendar day of date. A day with no fragments produces no row and no error.
// The (userID, dayStart) upsert keeps repeated runs idempotent.
func (s *EchoService) CreateMemoryForUser(ctx context.Context, userID string, date time.Time) error {
	dayStart, dayEnd := model.DayWindow(date, s.loc)

	frags, err := s.store.Fragments().ListWindow(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if len(frags) == 0 {
		return nil
	}

	moments := make([]insight.Moment, 0, len(frags))
	for _, f := range frags {
		moments = append(moments, insight.Moment{Content: f.Content, Type: f.Type})
	}
	summary := s.insights.DailyMemory(ctx, moments)

	if _, err := s.store.DailyMemories().Upsert(ctx, &model.DailyMemory{
		UserID:  userID,
		Date:    dayStart,
		Summary: summary,
	}); err != nil {
		return err
	}
	memoriesUpsertedTotal.Inc()
	return nil
}

// GenerateToday runs the compiler for the current day and returns the
// freshly read row. A quiet day yields ErrNotFound, not a failure.
func (s *EchoService) GenerateToday(ctx context.Context, userID string) (*model.DailyMemory, error) {
	now := s.Now()
	if err := s.CreateMemoryForUser(ctx, userID, now); err != nil {
		return nil, err
	}
	return s.store.DailyMemories().GetByDay(ctx, userID, model.DayStart(now, s.loc))
}

// GetByDate looks up one day's memory by its YYYY-MM-DD date string.
// The lookup key is the same normalized day start the upsert writes.
func (s *EchoService) GetByDate(ctx context.Context, userID, dateStr string) (*model.DailyMemory, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", model.ErrValidation, dateStr)
	}
	return s.store.DailyMemories().GetByDay(ctx, userID, day)
}

// List returns one page of echoes newest-first. The store fetches one row
// beyond the page size; the extra row is dropped and the id of the new last
// item becomes the cursor for the next page. No cursor in the result means
// the end of the list.
func (s *EchoService) List(ctx context.Context, userID, cursor string) (*model.EchoPage, error) {
	rows, err := s.store.DailyMemories().List(ctx, userID, cursor, s.pageSize+1)
	if err != nil {
		return nil, err
	}
	page := &model.EchoPage{Items: rows}
	if page.Items == nil {
		page.Items = []*model.DailyMemory{}
	}
	if len(rows) > s.pageSize {
		page.Items = rows[:s.pageSize]
		next := page.Items[len(page.Items)-1].MemoryID
		page.NextCursor = &next
	}
	return page, nil
}

// Sweep generates today's memory for every user who captured at least one
// fragment today. Users are processed independently; one failure never
// aborts the rest.
func (s *EchoService) Sweep(ctx context.Context) {
	now := s.Now()
	dayStart, dayEnd := model.DayWindow(now, s.loc)

	s.log.Info().Time("day", dayStart).Msg("starting daily memory generation")

	userIDs, err := s.store.Users().ActiveIDs(ctx, dayStart, dayEnd)
	if err != nil {
		s.log.Error().Stack().Err(err).Msg("sweep: listing active users failed")
		return
	}

	var failed int
	for _, id := range userIDs {
		if err := s.CreateMemoryForUser(ctx, id, now); err != nil {
			failed++
			sweepUsersTotal.WithLabelValues("error").Inc()
			s.log.Error().Err(err).Str("user_id", id).Msg("sweep: generation failed for user")
			continue
		}
		sweepUsersTotal.WithLabelValues("ok").Inc()
	}

	s.log.Info().
		Int("users", len(userIDs)).
		Int("failed", failed).
		Msg("daily memory generation complete")
}

// RunNightly fires Sweep once per day at hour o'clock in the reference
// timezone until ctx is canceled.
func (s *EchoService) RunNightly(ctx context.Context, hour int) {
	for {
		next := nextRun(s.Now().In(s.loc), hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("nightly sweep stopping")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// nextRun returns the next instant at hour o'clock strictly after now.
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
