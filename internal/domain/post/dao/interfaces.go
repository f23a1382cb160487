package dao

import (
	"context"
	"time"

	"github.com/vadim/postbridge/internal/domain/post/entity"
)

// PostFilter holds filtering options for listing posts
type PostFilter struct {
	Status    *entity.PostStatus
	AccountID string // matches posts targeting this account
}

// ListOptions holds pagination and sorting options
type ListOptions struct {
	Limit  int
	Offset int
}

// PostRepository defines persistence operations for posts
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	// GetByID returns nil, nil when no post exists with the id
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter, opts ListOptions) ([]entity.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// GetDueForPublishing returns scheduled posts whose time has passed
	GetDueForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error)
	SetPublished(ctx context.Context, id string, providerResult string, publishedAt time.Time) error
	SetFailed(ctx context.Context, id string, errorMsg string) error
}
