// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store"
)

// MemStore is a mutex-guarded in-memory store.Store. Error fields, when set,
// are returned by the matching operation so tests can exercise failure paths.
type MemStore struct {
	mu sync.Mutex

	users     map[string]*model.User
	fragments []*model.Fragment
	insights  map[string]*model.Insight      // keyed by fragment id
	memories  map[string]*model.DailyMemory  // keyed by user|dayStart

	// Clock stamps creation times; tests may pin it.
	Clock func() time.Time

	FragmentCreateErr error
	InsightCreateErr  error
	UpsertErr         error
	ListWindowErrFor  map[string]error // per user id
}

func New() *MemStore {
	return &MemStore{
		users:            make(map[string]*model.User),
		insights:         make(map[string]*model.Insight),
		memories:         make(map[string]*model.DailyMemory),
		Clock:            time.Now,
		ListWindowErrFor: make(map[string]error),
	}
}

func (m *MemStore) Users() store.Users                 { return (*memUsers)(m) }
func (m *MemStore) Fragments() store.Fragments         { return (*memFragments)(m) }
func (m *MemStore) Insights() store.Insights           { return (*memInsights)(m) }
func (m *MemStore) DailyMemories() store.DailyMemories { return (*memMemories)(m) }

func memKey(userID string, day time.Time) string {
	return userID + "|" + day.UTC().Format(time.RFC3339)
}

// --- Users ---

type memUsers MemStore

func (u *memUsers) Create(_ context.Context, in *model.User) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := *in
	out.CreationTime = u.Clock()
	u.users[in.UserID] = &out
	cp := out
	return &cp, nil
}

func (u *memUsers) Ensure(_ context.Context, in *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if existing, ok := u.users[in.UserID]; ok {
		existing.Email = in.Email
		existing.DisplayName = in.DisplayName
		return nil
	}
	out := *in
	out.CreationTime = u.Clock()
	u.users[in.UserID] = &out
	return nil
}

func (u *memUsers) Get(_ context.Context, userID string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if existing, ok := u.users[userID]; ok {
		cp := *existing
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (u *memUsers) Delete(_ context.Context, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.users, userID)
	var kept []*model.Fragment
	for _, f := range u.fragments {
		if f.UserID == userID {
			delete(u.insights, f.FragmentID)
			continue
		}
		kept = append(kept, f)
	}
	u.fragments = kept
	for k, m := range u.memories {
		if m.UserID == userID {
			delete(u.memories, k)
		}
	}
	return nil
}

func (u *memUsers) ActiveIDs(_ context.Context, start, end time.Time) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, f := range u.fragments {
		if !f.CreationTime.Before(start) && f.CreationTime.Before(end) && !seen[f.UserID] {
			seen[f.UserID] = true
			out = append(out, f.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- Fragments ---

type memFragments MemStore

func (f *memFragments) Create(_ context.Context, in *model.Fragment) (*model.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FragmentCreateErr != nil {
		return nil, f.FragmentCreateErr
	}
	out := *in
	if out.FragmentID == "" {
		out.FragmentID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = f.Clock()
	}
	f.fragments = append(f.fragments, &out)
	cp := out
	return &cp, nil
}

func (f *memFragments) GetByID(_ context.Context, userID, fragmentID string) (*model.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fr := range f.fragments {
		if fr.UserID == userID && fr.FragmentID == fragmentID {
			return f.joined(fr), nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *memFragments) List(_ context.Context, req model.ListFragmentsRequest) ([]*model.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.Fragment
	for _, fr := range f.fragments {
		if fr.UserID != req.UserID {
			continue
		}
		if req.Day != nil {
			end := req.Day.AddDate(0, 0, 1)
			if fr.CreationTime.Before(*req.Day) || !fr.CreationTime.Before(end) {
				continue
			}
		}
		all = append(all, f.joined(fr))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreationTime.After(all[j].CreationTime) })
	if req.Skip >= len(all) {
		return nil, nil
	}
	all = all[req.Skip:]
	if req.Take > 0 && req.Take < len(all) {
		all = all[:req.Take]
	}
	return all, nil
}

func (f *memFragments) ListWindow(_ context.Context, userID string, start, end time.Time) ([]*model.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ListWindowErrFor[userID]; err != nil {
		return nil, err
	}
	var out []*model.Fragment
	for _, fr := range f.fragments {
		if fr.UserID == userID && !fr.CreationTime.Before(start) && fr.CreationTime.Before(end) {
			out = append(out, f.joined(fr))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.After(out[j].CreationTime) })
	return out, nil
}

func (f *memFragments) joined(fr *model.Fragment) *model.Fragment {
	cp := *fr
	if in, ok := f.insights[fr.FragmentID]; ok {
		inCp := *in
		cp.Insight = &inCp
	}
	return &cp
}

// --- Insights ---

type memInsights MemStore

func (i *memInsights) Create(_ context.Context, in *model.Insight) (*model.Insight, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.InsightCreateErr != nil {
		return nil, i.InsightCreateErr
	}
	out := *in
	if out.InsightID == "" {
		out.InsightID = uuid.New().String()
	}
	out.CreationTime = i.Clock()
	i.insights[in.FragmentID] = &out
	cp := out
	return &cp, nil
}

// --- DailyMemories ---

type memMemories MemStore

func (d *memMemories) Upsert(_ context.Context, in *model.DailyMemory) (*model.DailyMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.UpsertErr != nil {
		return nil, d.UpsertErr
	}
	key := memKey(in.UserID, in.Date)
	if existing, ok := d.memories[key]; ok {
		existing.Summary = in.Summary
		existing.UpdateTime = d.Clock()
		cp := *existing
		return &cp, nil
	}
	out := *in
	if out.MemoryID == "" {
		out.MemoryID = uuid.New().String()
	}
	now := d.Clock()
	out.CreationTime = now
	out.UpdateTime = now
	d.memories[key] = &out
	cp := out
	return &cp, nil
}

func (d *memMemories) GetByDay(_ context.Context, userID string, day time.Time) (*model.DailyMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.memories[memKey(userID, day)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (d *memMemories) List(_ context.Context, userID, cursor string, limit int) ([]*model.DailyMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var all []*model.DailyMemory
	for _, m := range d.memories {
		if m.UserID == userID {
			cp := *m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].MemoryID > all[j].MemoryID
	})
	if cursor != "" {
		idx := -1
		for i, m := range all {
			if m.MemoryID == cursor {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, nil
		}
		all = all[idx+1:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// CountMemories reports the number of daily memory rows held for a user.
func (m *MemStore) CountMemories(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mem := range m.memories {
		if mem.UserID == userID {
			n++
		}
	}
	return n
}
