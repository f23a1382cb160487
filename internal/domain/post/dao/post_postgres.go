package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/postbridge/internal/domain/post/entity"
)

// PostPostgres implements PostRepository for PostgreSQL
type PostPostgres struct {
	pool *pgxpool.Pool
}

// NewPostPostgres creates a new PostgreSQL post repository
func NewPostPostgres(pool *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{pool: pool}
}

// Create inserts a new post
func (r *PostPostgres) Create(ctx context.Context, post *entity.Post) error {
	query := `
		INSERT INTO posts (id, text, media_urls, account_ids, status, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Text,
		post.MediaURLs,
		post.AccountIDs,
		post.Status,
		post.ScheduledAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by ID
func (r *PostPostgres) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	query := `
		SELECT id, text, media_urls, account_ids, status, provider_result, error_message,
		       scheduled_at, published_at, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	return post, nil
}

// Update updates an existing post
func (r *PostPostgres) Update(ctx context.Context, post *entity.Post) error {
	query := `
		UPDATE posts
		SET text = $2, media_urls = $3, account_ids = $4, status = $5, scheduled_at = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Text,
		post.MediaURLs,
		post.AccountIDs,
		post.Status,
		post.ScheduledAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}

	return nil
}

// Delete removes a post
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// List retrieves posts matching the filter
func (r *PostPostgres) List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.Post, error) {
	query := `
		SELECT id, text, media_urls, account_ids, status, provider_result, error_message,
		       scheduled_at, published_at, created_at, updated_at
		FROM posts
	`

	where, args := buildFilter(filter)
	query += where
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []entity.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

// Count returns the number of posts matching the filter
func (r *PostPostgres) Count(ctx context.Context, filter PostFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM posts"

	where, args := buildFilter(filter)
	query += where

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}

	return total, nil
}

// GetDueForPublishing returns scheduled posts whose time has passed
func (r *PostPostgres) GetDueForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error) {
	query := `
		SELECT id, text, media_urls, account_ids, status, provider_result, error_message,
		       scheduled_at, published_at, created_at, updated_at
		FROM posts
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
	`

	rows, err := r.pool.Query(ctx, query, entity.PostStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("querying due posts: %w", err)
	}
	defer rows.Close()

	var posts []entity.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

// SetPublished marks a post as published with the provider's response
func (r *PostPostgres) SetPublished(ctx context.Context, id string, providerResult string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $2, provider_result = $3, published_at = $4, error_message = NULL, updated_at = $5
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, entity.PostStatusPublished, providerResult, publishedAt, time.Now())
	if err != nil {
		return fmt.Errorf("marking post published: %w", err)
	}

	return nil
}

// SetFailed marks a post as failed with the error message
func (r *PostPostgres) SetFailed(ctx context.Context, id string, errorMsg string) error {
	query := `
		UPDATE posts
		SET status = $2, error_message = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, entity.PostStatusFailed, errorMsg, time.Now())
	if err != nil {
		return fmt.Errorf("marking post failed: %w", err)
	}

	return nil
}

func buildFilter(filter PostFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(account_ids)", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	where := " WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}
	return where, args
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	var post entity.Post
	var providerResult, errorMessage *string
	var scheduledAt, publishedAt *time.Time

	err := row.Scan(
		&post.ID,
		&post.Text,
		&post.MediaURLs,
		&post.AccountIDs,
		&post.Status,
		&providerResult,
		&errorMessage,
		&scheduledAt,
		&publishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if providerResult != nil {
		post.ProviderResult = *providerResult
	}
	if errorMessage != nil {
		post.ErrorMessage = *errorMessage
	}
	post.ScheduledAt = scheduledAt
	post.PublishedAt = publishedAt

	return &post, nil
}
