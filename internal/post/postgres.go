package post

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/onnwee/currents/internal/tracing"
)

// PostgresStore is a Postgres-backed implementation of Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres post store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postColumns = "id, author_id, title, content, COALESCE(category, ''), embedding, created_at"

// scanPost scans a single post row.
func scanPost(scanner interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	var embedding pq.Float64Array
	if err := scanner.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Category, &embedding, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Embedding = []float64(embedding)
	return &p, nil
}

// GetPost retrieves a post by ID.
func (s *PostgresStore) GetPost(ctx context.Context, id string) (*Post, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = $1", id)

	p, scanErr := scanPost(row)
	if scanErr == sql.ErrNoRows {
		err = ErrPostNotFound
		return nil, err
	}
	if scanErr != nil {
		err = fmt.Errorf("failed to get post: %w", scanErr)
		return nil, err
	}
	return p, nil
}

// GetManyByIDs retrieves the posts matching the given IDs.
func (s *PostgresStore) GetManyByIDs(ctx context.Context, ids []string) ([]*Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, queryErr := s.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ANY($1)", pq.Array(ids))
	if queryErr != nil {
		err = fmt.Errorf("failed to query posts by ids: %w", queryErr)
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// RecentByAuthors returns posts by the given authors within the window,
// newest first.
func (s *PostgresStore) RecentByAuthors(ctx context.Context, authorIDs []string, window time.Duration, limit int) ([]*Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	cutoff := time.Now().Add(-window)
	rows, queryErr := s.db.QueryContext(ctx,
		"SELECT "+postColumns+` FROM posts
		 WHERE author_id = ANY($1) AND created_at > $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		pq.Array(authorIDs), cutoff, limit)
	if queryErr != nil {
		err = fmt.Errorf("failed to query recent posts by authors: %w", queryErr)
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// RecentRandom returns a random sample of posts within the window.
func (s *PostgresStore) RecentRandom(ctx context.Context, window time.Duration, limit int) ([]*Post, error) {
	var err error
	ctx, endSpan := tracing.StartDBSpan(ctx, "posts", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	cutoff := time.Now().Add(-window)
	rows, queryErr := s.db.QueryContext(ctx,
		"SELECT "+postColumns+` FROM posts
		 WHERE created_at > $1
		 ORDER BY RANDOM()
		 LIMIT $2`,
		cutoff, limit)
	if queryErr != nil {
		err = fmt.Errorf("failed to query random recent posts: %w", queryErr)
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*Post, error) {
	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}
