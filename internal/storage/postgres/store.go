// Package postgres implements the storage interfaces on the managed Postgres backend.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
)

// undefinedTable is the SQLSTATE Postgres reports for a missing relation.
const undefinedTable = "42P01"

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var (
	_ storage.NewsRepository    = (*Store)(nil)
	_ storage.SubscriptionStore = (*Store)(nil)
	_ storage.UserStore         = (*Store)(nil)
	_ storage.CatalogStore      = (*Store)(nil)
)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return New(db), nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// classify maps driver errors onto storage sentinels.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%s: %w: %s", op, storage.ErrTableMissing, pqErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// --- NewsRepository ---------------------------------------------------------

type newsRow struct {
	ID              string         `db:"id"`
	Title           sql.NullString `db:"title"`
	URL             sql.NullString `db:"url"`
	PublishedAt     time.Time      `db:"published_at"`
	SourceName      sql.NullString `db:"source_name"`
	Category        sql.NullString `db:"category"`
	HasAnalysis     bool           `db:"has_analysis"`
	AnalysisTitle   sql.NullString `db:"analysis_title"`
	AnalysisContent sql.NullString `db:"analysis_content"`
	WorstScenarios  []byte         `db:"worst_scenarios"`
	ActionTips      []byte         `db:"action_tips"`
	ActionBlurred   sql.NullBool   `db:"action_blurred"`
}

// newsSelect selects the article columns plus only the column family of level.
func newsSelect(level models.Level, join string) string {
	p := level.ColumnPrefix()
	return fmt.Sprintf(`
		SELECT n.id, n.title, n.url, n.published_at, n.source_name, n.category,
			a.news_id IS NOT NULL AS has_analysis,
			a.%[1]s_title AS analysis_title,
			a.%[1]s_content AS analysis_content,
			a.%[1]s_worst_scenarios AS worst_scenarios,
			a.%[1]s_action_tips AS action_tips,
			a.%[1]s_action_blurred AS action_blurred
		FROM news n
		%[2]s JOIN news_analysis a ON a.news_id = n.id`, p, join)
}

// ListNews returns articles that have an analysis record, newest first.
func (s *Store) ListNews(ctx context.Context, q storage.NewsQuery) ([]models.NewsArticle, error) {
	query := newsSelect(q.Level, "INNER") + `
		WHERE n.published_at >= $1 AND n.published_at < $2
			AND n.category = ANY($3)
		ORDER BY n.published_at DESC, n.id
		LIMIT $4`

	var rows []newsRow
	if err := s.db.SelectContext(ctx, &rows, query, q.Start, q.End, pq.Array(q.Categories), q.Limit); err != nil {
		return nil, classify("list news", err)
	}

	articles := make([]models.NewsArticle, 0, len(rows))
	for _, r := range rows {
		a, err := r.toArticle(q.Level)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// GetNews returns one article with the requested level's analysis, if any.
func (s *Store) GetNews(ctx context.Context, id string, level models.Level) (*models.NewsArticle, error) {
	query := newsSelect(level, "LEFT") + `
		WHERE n.id = $1
		LIMIT 1`

	var r newsRow
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, classify("get news", err)
	}

	a, err := r.toArticle(level)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r newsRow) toArticle(level models.Level) (models.NewsArticle, error) {
	a := models.NewsArticle{
		ID:          r.ID,
		Title:       r.Title.String,
		URL:         r.URL.String,
		PublishedAt: r.PublishedAt.UTC(),
		SourceName:  r.SourceName.String,
		Category:    r.Category.String,
	}
	if !r.HasAnalysis {
		return a, nil
	}

	content := models.AnalysisContent{
		Title:   r.AnalysisTitle.String,
		Content: r.AnalysisContent.String,
	}
	var err error
	if content.WorstScenarioByContext, err = decodeDict(r.WorstScenarios); err != nil {
		return a, fmt.Errorf("decode worst scenarios of %s: %w", r.ID, err)
	}
	if content.ActionTipByContext, err = decodeDict(r.ActionTips); err != nil {
		return a, fmt.Errorf("decode action tips of %s: %w", r.ID, err)
	}
	if r.ActionBlurred.Valid {
		blurred := r.ActionBlurred.Bool
		content.ActionBlurred = &blurred
	}

	a.AnalysisByLevel = map[models.Level]models.AnalysisContent{level: content}
	return a, nil
}

func decodeDict(raw []byte) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// --- SubscriptionStore ------------------------------------------------------

type subscriptionRow struct {
	ID        string       `db:"id"`
	UserID    string       `db:"user_id"`
	Plan      string       `db:"plan"`
	Active    bool         `db:"active"`
	StartedAt time.Time    `db:"started_at"`
	EndsAt    sql.NullTime `db:"ends_at"`
}

// LatestSubscription returns the most recently started row or nil.
func (s *Store) LatestSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	var r subscriptionRow
	err := s.db.GetContext(ctx, &r, `
		SELECT id, user_id, plan, active, started_at, ends_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("latest subscription", err)
	}

	sub := &models.Subscription{
		ID:        r.ID,
		UserID:    r.UserID,
		Plan:      models.Plan(r.Plan),
		Active:    r.Active,
		StartedAt: r.StartedAt.UTC(),
	}
	if r.EndsAt.Valid {
		sub.EndsAt = r.EndsAt.Time.UTC()
	}
	return sub, nil
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, email, name, image_url, level, interests, contexts, onboarded_at, created_at, updated_at`

type userRow struct {
	ID          string         `db:"id"`
	Email       sql.NullString `db:"email"`
	Name        sql.NullString `db:"name"`
	ImageURL    sql.NullString `db:"image_url"`
	Level       sql.NullInt64  `db:"level"`
	Interests   pq.StringArray `db:"interests"`
	Contexts    pq.StringArray `db:"contexts"`
	OnboardedAt sql.NullTime   `db:"onboarded_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r userRow) toUser() models.User {
	u := models.User{
		ID:           r.ID,
		Email:        r.Email.String,
		Name:         r.Name.String,
		ImageURL:     r.ImageURL.String,
		Level:        models.Level(r.Level.Int64),
		InterestTags: []string(r.Interests),
		ContextTags:  []string(r.Contexts),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if !u.Level.Valid() {
		u.Level = models.DefaultLevel
	}
	if u.InterestTags == nil {
		u.InterestTags = []string{}
	}
	if u.ContextTags == nil {
		u.ContextTags = []string{}
	}
	if r.OnboardedAt.Valid {
		at := r.OnboardedAt.Time.UTC()
		u.OnboardedAt = &at
	}
	return u
}

// UpsertUser inserts the user or refreshes its identity columns.
func (s *Store) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	level := u.Level
	if !level.Valid() {
		level = models.DefaultLevel
	}
	now := s.now().UTC()

	var r userRow
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, email, name, image_url, level, interests, contexts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.ImageURL, int(level),
		pq.StringArray(nonNil(u.InterestTags)), pq.StringArray(nonNil(u.ContextTags)), now,
	).StructScan(&r)
	if err != nil {
		return models.User{}, classify("upsert user", err)
	}
	return r.toUser(), nil
}

// GetUser returns the user or storage.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var r userRow
	err := s.db.GetContext(ctx, &r, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, classify("get user", err)
	}
	return r.toUser(), nil
}

// CompleteOnboarding stores preferences and sets onboarded_at only once.
func (s *Store) CompleteOnboarding(ctx context.Context, userID string, o models.Onboarding) (models.User, error) {
	var r userRow
	err := s.db.QueryRowxContext(ctx, `
		UPDATE users
		SET level = $2,
			interests = $3,
			contexts = $4,
			onboarded_at = COALESCE(onboarded_at, $5),
			updated_at = $6
		WHERE id = $1
		RETURNING `+userColumns,
		userID, int(o.Level), pq.StringArray(nonNil(o.InterestTags)), pq.StringArray(nonNil(o.ContextTags)),
		o.OnboardedAt.UTC(), s.now().UTC(),
	).StructScan(&r)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, classify("complete onboarding", err)
	}
	return r.toUser(), nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// --- CatalogStore -----------------------------------------------------------

// SeedCatalog inserts missing catalog rows in one transaction.
func (s *Store) SeedCatalog(ctx context.Context, interests, contexts []storage.CatalogTag) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, classify("begin catalog seed", err)
	}
	defer tx.Rollback() //nolint:errcheck

	inserted := 0
	for _, set := range []struct {
		table string
		tags  []storage.CatalogTag
	}{
		{"interest_tags", interests},
		{"context_tags", contexts},
	} {
		stmt := fmt.Sprintf(`INSERT INTO %s (id, label) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, set.table)
		for _, t := range set.tags {
			res, err := tx.ExecContext(ctx, stmt, t.ID, t.Label)
			if err != nil {
				return 0, classify("seed "+set.table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, fmt.Errorf("seed %s: %w", set.table, err)
			}
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("commit catalog seed", err)
	}
	return inserted, nil
}
