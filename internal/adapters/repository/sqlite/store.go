// Package sqlite provides the durable store backend. The UNIQUE index on
// (buy_request_id, listing_id) realizes the at-most-one-match-per-pair
// guarantee at the storage layer.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/adapters/repository/sqlite/migrations"
	"github.com/negade/gebeya/internal/domain/model"
)

// Store is the sqlite-backed implementation of repository.Store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path and applies pending
// migrations. The parent directory is created when missing.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL keeps readers unblocked while matching writes; busy_timeout
	// covers concurrent batch and per-event triggers.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// migrate applies numbered .sql files not yet recorded in
// schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	entries, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return fmt.Errorf("migration %s: unparseable version prefix", name)
		}
		if version <= current {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// GetActiveBuyRequest returns the ACTIVE buy request with the given id.
func (s *Store) GetActiveBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, buyer_id, title, description, category, min_budget, max_budget,
		       quantity, unit, location, urgency, status, created_at
		FROM buy_requests WHERE id = ? AND status = ?`, id, model.StatusActive)

	r, err := scanBuyRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BuyRequest{}, fmt.Errorf("buy request %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.BuyRequest{}, fmt.Errorf("loading buy request %s: %w", id, err)
	}
	return r, nil
}

// ListActiveListings returns ACTIVE listings in category from sellers other
// than excludeOwnerID, oldest first.
func (s *Store) ListActiveListings(ctx context.Context, category model.Category, excludeOwnerID string) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seller_id, title, description, category, price, currency,
		       quantity, unit, seller_verified, status, created_at
		FROM listings
		WHERE status = ? AND category = ? AND seller_id != ?
		ORDER BY created_at, id`, model.StatusActive, category, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		var verified int
		var created string
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &l.Description, &l.Category,
			&l.Price, &l.Currency, &l.Quantity, &l.Unit, &verified, &l.Status, &created); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		l.SellerVerified = verified != 0
		l.CreatedAt = parseTime(created)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return out, nil
}

// ListActiveBuyRequestIDs returns ids of all ACTIVE buy requests, oldest
// first.
func (s *Store) ListActiveBuyRequestIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM buy_requests WHERE status = ? ORDER BY created_at, id", model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("listing active requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating request ids: %w", err)
	}
	return ids, nil
}

// CreateMatch inserts a match; the unique pair index turns a concurrent
// double-insert into ErrDuplicateMatch.
func (s *Store) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if m.BuyRequestID == "" || m.ListingID == "" {
		return model.Match{}, fmt.Errorf("match needs request and listing ids: %w", repository.ErrInvalidEntity)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, buy_request_id, listing_id, buyer_id, seller_id, score, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.BuyRequestID, m.ListingID, m.BuyerID, m.SellerID, m.Score, m.Reason, string(m.Status),
		m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Match{}, fmt.Errorf("pair (%s, %s): %w", m.BuyRequestID, m.ListingID, repository.ErrDuplicateMatch)
		}
		return model.Match{}, fmt.Errorf("inserting match: %w", err)
	}
	return m, nil
}

// CreateBuyRequest inserts a buy request.
func (s *Store) CreateBuyRequest(ctx context.Context, r model.BuyRequest) (model.BuyRequest, error) {
	if r.BuyerID == "" || !r.Category.Valid() {
		return model.BuyRequest{}, fmt.Errorf("buy request needs buyer and valid category: %w", repository.ErrInvalidEntity)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.StatusActive
	}
	if r.Urgency == "" {
		r.Urgency = model.UrgencyNormal
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO buy_requests (id, buyer_id, title, description, category, min_budget, max_budget,
		                          quantity, unit, location, urgency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BuyerID, r.Title, r.Description, string(r.Category), r.MinBudget, r.MaxBudget,
		r.Quantity, r.Unit, r.Location, string(r.Urgency), r.Status,
		r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.BuyRequest{}, fmt.Errorf("inserting buy request: %w", err)
	}
	return r, nil
}

// CreateListing inserts a listing.
func (s *Store) CreateListing(ctx context.Context, l model.Listing) (model.Listing, error) {
	if l.SellerID == "" || !l.Category.Valid() {
		return model.Listing{}, fmt.Errorf("listing needs seller and valid category: %w", repository.ErrInvalidEntity)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = model.StatusActive
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	verified := 0
	if l.SellerVerified {
		verified = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, title, description, category, price, currency,
		                      quantity, unit, seller_verified, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SellerID, l.Title, l.Description, string(l.Category), l.Price, l.Currency,
		l.Quantity, l.Unit, verified, l.Status,
		l.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Listing{}, fmt.Errorf("inserting listing: %w", err)
	}
	return l, nil
}

// ListMatchesForActor returns matches involving the actor, newest first.
func (s *Store) ListMatchesForActor(ctx context.Context, actorID string) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, buy_request_id, listing_id, buyer_id, seller_id, score, reason, status, created_at
		FROM matches
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC, id`, actorID, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		var created string
		if err := rows.Scan(&m.ID, &m.BuyRequestID, &m.ListingID, &m.BuyerID, &m.SellerID,
			&m.Score, &m.Reason, &m.Status, &created); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.CreatedAt = parseTime(created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return out, nil
}

// UpdateMatchStatus records a party's accept or reject decision. The
// conditional UPDATE keeps the PENDING-only transition atomic under
// concurrent decisions.
func (s *Store) UpdateMatchStatus(ctx context.Context, id, actorID string, status model.MatchStatus) (model.Match, error) {
	if status != model.MatchAccepted && status != model.MatchRejected {
		return model.Match{}, fmt.Errorf("status %q is not a decision: %w", status, repository.ErrInvalidEntity)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, buy_request_id, listing_id, buyer_id, seller_id, score, reason, status, created_at
		FROM matches WHERE id = ?`, id)

	var m model.Match
	var created string
	err := row.Scan(&m.ID, &m.BuyRequestID, &m.ListingID, &m.BuyerID, &m.SellerID,
		&m.Score, &m.Reason, &m.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, fmt.Errorf("match %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("loading match %s: %w", id, err)
	}
	m.CreatedAt = parseTime(created)

	if m.BuyerID != actorID && m.SellerID != actorID {
		return model.Match{}, fmt.Errorf("match %s: %w", id, repository.ErrNotParticipant)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE matches SET status = ? WHERE id = ? AND status = ?",
		string(status), id, string(model.MatchPending))
	if err != nil {
		return model.Match{}, fmt.Errorf("updating match %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Match{}, fmt.Errorf("updating match %s: %w", id, err)
	}
	if affected == 0 {
		return model.Match{}, fmt.Errorf("match %s is %s: %w", id, m.Status, repository.ErrMatchDecided)
	}

	m.Status = status
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuyRequest(row rowScanner) (model.BuyRequest, error) {
	var r model.BuyRequest
	var created string
	err := row.Scan(&r.ID, &r.BuyerID, &r.Title, &r.Description, &r.Category,
		&r.MinBudget, &r.MaxBudget, &r.Quantity, &r.Unit, &r.Location,
		&r.Urgency, &r.Status, &created)
	if err != nil {
		return model.BuyRequest{}, err
	}
	r.CreatedAt = parseTime(created)
	return r, nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// isUniqueViolation detects the sqlite UNIQUE constraint error without
// depending on driver-internal error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
