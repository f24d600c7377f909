package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/onnwee/currents/internal/tracing"
)

// PostgresStore is a Postgres-backed implementation of Store.
// GetProfile reconstructs the profile by joining the user row with the
// recent feed history, follow graph, and category interaction
// aggregates; callers are expected to cache the result.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetProfile reconstructs the full profile for a user.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "users", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	p := &Profile{ID: userID, CategoryWeights: make(map[string]float64)}

	var vector pq.Float64Array
	row := s.db.QueryRowContext(ctx,
		"SELECT interest_vector FROM users WHERE id = $1", userID)
	if scanErr := row.Scan(&vector); scanErr == sql.ErrNoRows {
		err = ErrProfileNotFound
		return nil, err
	} else if scanErr != nil {
		err = fmt.Errorf("failed to load user row: %w", scanErr)
		return nil, err
	}
	p.InterestVector = []float64(vector)

	if p.RecentFeed, err = s.queryStrings(ctx,
		`SELECT post_id FROM feed_history
		 WHERE user_id = $1
		 ORDER BY shown_at DESC
		 LIMIT $2`, userID, RecentFeedLimit); err != nil {
		err = fmt.Errorf("failed to load recent feed history: %w", err)
		return nil, err
	}

	if p.FollowedAuthors, err = s.queryStrings(ctx,
		"SELECT followed_id FROM follows WHERE follower_id = $1", userID); err != nil {
		err = fmt.Errorf("failed to load follows: %w", err)
		return nil, err
	}

	rows, queryErr := s.db.QueryContext(ctx,
		`SELECT category, SUM(weight)
		 FROM user_category_interactions
		 WHERE user_id = $1
		 GROUP BY category`, userID)
	if queryErr != nil {
		err = fmt.Errorf("failed to load category interactions: %w", queryErr)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var weight float64
		if scanErr := rows.Scan(&category, &weight); scanErr != nil {
			err = fmt.Errorf("failed to scan category interaction: %w", scanErr)
			return nil, err
		}
		p.CategoryWeights[category] = weight
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		err = fmt.Errorf("failed to iterate category interactions: %w", rowsErr)
		return nil, err
	}

	return p, nil
}

// SaveInterestVector persists a user's updated interest vector.
func (s *PostgresStore) SaveInterestVector(ctx context.Context, userID string, vector []float64) error {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "users", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	result, execErr := s.db.ExecContext(ctx,
		"UPDATE users SET interest_vector = $1 WHERE id = $2",
		pq.Array(vector), userID)
	if execErr != nil {
		err = fmt.Errorf("failed to save interest vector: %w", execErr)
		return err
	}
	if n, raErr := result.RowsAffected(); raErr == nil && n == 0 {
		err = ErrProfileNotFound
		return err
	}
	return nil
}

// IncrementCategoryWeight upserts the user's accumulated weight for a category.
func (s *PostgresStore) IncrementCategoryWeight(ctx context.Context, userID, category string, weight float64) error {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "user_category_interactions", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	_, execErr := s.db.ExecContext(ctx,
		`INSERT INTO user_category_interactions (user_id, category, weight)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, category)
		 DO UPDATE SET weight = user_category_interactions.weight + $3`,
		userID, category, weight)
	if execErr != nil {
		err = fmt.Errorf("failed to increment category weight: %w", execErr)
		return err
	}
	return nil
}

func (s *PostgresStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
