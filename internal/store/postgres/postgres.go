package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenWithRetry keeps pinging until Postgres accepts connections or the
// backoff window is exhausted. Startup races against the database container
// in compose deployments.
func OpenWithRetry(ctx context.Context, dsn string) (*sql.DB, error) {
	var db *sql.DB
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = 30 * time.Second
	op := func() error {
		var err error
		db, err = Open(dsn)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(exp, ctx)); err != nil {
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users                 { return &users{db: s.db} }
func (s *pgStore) Fragments() store.Fragments         { return &fragments{db: s.db} }
func (s *pgStore) Insights() store.Insights           { return &insights{db: s.db} }
func (s *pgStore) DailyMemories() store.DailyMemories { return &dailyMemories{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (u *users) Ensure(ctx context.Context, m *model.User) error {
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id)
        DO UPDATE SET email=EXCLUDED.email, display_name=EXCLUDED.display_name
    `, m.UserID, m.Email, m.DisplayName)
	return err
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM insights WHERE fragment_id IN
            (SELECT fragment_id FROM fragments WHERE user_id=$1)
    `, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_memories WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (u *users) ActiveIDs(ctx context.Context, start, end time.Time) ([]string, error) {
	rows, err := u.db.QueryContext(ctx, `
        SELECT DISTINCT user_id FROM fragments
        WHERE creation_time >= $1 AND creation_time < $2
    `, start, end)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// --- Fragments ---
type fragments struct{ db *sql.DB }

func (f *fragments) Create(ctx context.Context, m *model.Fragment) (*model.Fragment, error) {
	id := m.FragmentID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := f.db.QueryRowContext(ctx, `
        INSERT INTO fragments (fragment_id, user_id, type, content, media_url)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, id, m.UserID, string(m.Type), m.Content, m.MediaURL)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.FragmentID = id
	out.CreationTime = created
	return &out, nil
}

const fragmentSelect = `
    SELECT f.fragment_id, f.user_id, f.type, f.content, f.media_url, f.creation_time,
           i.insight_id, i.content, i.creation_time
    FROM fragments f
    LEFT JOIN insights i ON i.fragment_id = f.fragment_id`

func scanFragment(row interface{ Scan(...interface{}) error }) (*model.Fragment, error) {
	var m model.Fragment
	var typ string
	var insightID, insightContent sql.NullString
	var insightCreated sql.NullTime
	if err := row.Scan(&m.FragmentID, &m.UserID, &typ, &m.Content, &m.MediaURL, &m.CreationTime,
		&insightID, &insightContent, &insightCreated); err != nil {
		return nil, err
	}
	m.Type = model.FragmentType(typ)
	if insightID.Valid {
		m.Insight = &model.Insight{
			InsightID:    insightID.String,
			FragmentID:   m.FragmentID,
			Content:      insightContent.String,
			CreationTime: insightCreated.Time,
		}
	}
	return &m, nil
}

func (f *fragments) GetByID(ctx context.Context, userID, fragmentID string) (*model.Fragment, error) {
	row := f.db.QueryRowContext(ctx, fragmentSelect+`
        WHERE f.user_id=$1 AND f.fragment_id=$2
    `, userID, fragmentID)
	m, err := scanFragment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return m, err
}

func (f *fragments) List(ctx context.Context, req model.ListFragmentsRequest) ([]*model.Fragment, error) {
	query := fragmentSelect + ` WHERE f.user_id=$1`
	args := []interface{}{req.UserID}
	if req.Day != nil {
		query += fmt.Sprintf(" AND f.creation_time >= $%d AND f.creation_time < $%d", len(args)+1, len(args)+2)
		args = append(args, *req.Day, req.Day.AddDate(0, 0, 1))
	}
	query += " ORDER BY f.creation_time DESC"
	if req.Take > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.Take)
	}
	if req.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", req.Skip)
	}
	return f.queryAll(ctx, query, args...)
}

func (f *fragments) ListWindow(ctx context.Context, userID string, start, end time.Time) ([]*model.Fragment, error) {
	query := fragmentSelect + `
        WHERE f.user_id=$1 AND f.creation_time >= $2 AND f.creation_time < $3
        ORDER BY f.creation_time DESC`
	return f.queryAll(ctx, query, userID, start, end)
}

func (f *fragments) queryAll(ctx context.Context, query string, args ...interface{}) ([]*model.Fragment, error) {
	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Fragment
	for rows.Next() {
		m, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --- Insights ---
type insights struct{ db *sql.DB }

func (i *insights) Create(ctx context.Context, in *model.Insight) (*model.Insight, error) {
	id := in.InsightID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := i.db.QueryRowContext(ctx, `
        INSERT INTO insights (insight_id, fragment_id, content)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, id, in.FragmentID, in.Content)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *in
	out.InsightID = id
	out.CreationTime = created
	return &out, nil
}

// --- DailyMemories ---
type dailyMemories struct{ db *sql.DB }

func (d *dailyMemories) Upsert(ctx context.Context, m *model.DailyMemory) (*model.DailyMemory, error) {
	id := m.MemoryID
	if id == "" {
		id = uuid.New().String()
	}
	out := *m
	row := d.db.QueryRowContext(ctx, `
        INSERT INTO daily_memories (memory_id, user_id, date, summary)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id, date)
        DO UPDATE SET summary=EXCLUDED.summary, update_time=now()
        RETURNING memory_id, creation_time, update_time
    `, id, m.UserID, m.Date, m.Summary)
	if err := row.Scan(&out.MemoryID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *dailyMemories) GetByDay(ctx context.Context, userID string, day time.Time) (*model.DailyMemory, error) {
	var out model.DailyMemory
	row := d.db.QueryRowContext(ctx, `
        SELECT memory_id, user_id, date, summary, creation_time, update_time
        FROM daily_memories WHERE user_id=$1 AND date=$2
    `, userID, day)
	if err := row.Scan(&out.MemoryID, &out.UserID, &out.Date, &out.Summary, &out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (d *dailyMemories) List(ctx context.Context, userID, cursor string, limit int) ([]*model.DailyMemory, error) {
	query := `
        SELECT memory_id, user_id, date, summary, creation_time, update_time
        FROM daily_memories WHERE user_id=$1`
	args := []interface{}{userID}
	if cursor != "" {
		// Keyset position: strictly older than the cursor row. An unknown
		// cursor yields an empty page rather than an error.
		query += ` AND (date, memory_id) < (
            SELECT date, memory_id FROM daily_memories WHERE user_id=$1 AND memory_id=$2)`
		args = append(args, cursor)
	}
	query += ` ORDER BY date DESC, memory_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.DailyMemory
	for rows.Next() {
		var m model.DailyMemory
		if err := rows.Scan(&m.MemoryID, &m.UserID, &m.Date, &m.Summary, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
