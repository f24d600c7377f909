package interaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onnwee/currents/internal/tracing"
)

// PostgresStore is a Postgres-backed implementation of Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres interaction store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AggregateCounts returns the engagement count snapshot for a post.
func (s *PostgresStore) AggregateCounts(ctx context.Context, postID string) (Counts, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "interactions", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	var c Counts
	row := s.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(CASE WHEN type = 'like' THEN 1 END),
		   COUNT(CASE WHEN type = 'comment' THEN 1 END),
		   COUNT(CASE WHEN type = 'share' THEN 1 END),
		   COUNT(CASE WHEN type = 'view' THEN 1 END)
		 FROM interactions WHERE post_id = $1`, postID)
	if scanErr := row.Scan(&c.Likes, &c.Comments, &c.Shares, &c.Views); scanErr != nil {
		err = fmt.Errorf("failed to aggregate interaction counts: %w", scanErr)
		return Counts{}, err
	}
	return c, nil
}

// CountFriendEngagement counts interactions on the post by authors the
// user follows.
func (s *PostgresStore) CountFriendEngagement(ctx context.Context, userID, postID string) (int, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "interactions", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	var count int
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions i
		 JOIN follows f ON i.user_id = f.followed_id
		 WHERE f.follower_id = $1 AND i.post_id = $2`, userID, postID)
	if scanErr := row.Scan(&count); scanErr != nil {
		err = fmt.Errorf("failed to count friend engagement: %w", scanErr)
		return 0, err
	}
	return count, nil
}

// UserAverageEngagementRate returns the fraction of the user's recorded
// interactions that are likes, comments, or shares.
func (s *PostgresStore) UserAverageEngagementRate(ctx context.Context, userID string) (float64, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "interactions", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	var rate sql.NullFloat64
	row := s.db.QueryRowContext(ctx,
		`SELECT AVG(CASE WHEN type IN ('like', 'comment', 'share') THEN 1 ELSE 0 END)
		 FROM interactions WHERE user_id = $1`, userID)
	if scanErr := row.Scan(&rate); scanErr != nil {
		err = fmt.Errorf("failed to compute average engagement rate: %w", scanErr)
		return 0, err
	}
	if !rate.Valid {
		return 0, nil
	}
	return rate.Float64, nil
}
