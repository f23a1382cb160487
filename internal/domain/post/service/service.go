package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/postbridge/internal/domain/post/dao"
	"github.com/vadim/postbridge/internal/domain/post/entity"
)

// Service handles business logic for posts
type Service struct {
	posts dao.PostRepository
}

// New creates a new post service
func New(posts dao.PostRepository) *Service {
	return &Service{posts: posts}
}

// CreateInput represents input for creating a post
type CreateInput struct {
	Text        string
	MediaURLs   []string
	AccountIDs  []string
	ScheduledAt *time.Time
}

// CreatePost creates a new post draft, scheduled when a time is set
func (s *Service) CreatePost(ctx context.Context, in CreateInput) (*entity.Post, error) {
	now := time.Now()

	status := entity.PostStatusDraft
	if in.ScheduledAt != nil {
		status = entity.PostStatusScheduled
	}

	post := &entity.Post{
		ID:          uuid.New().String(),
		Text:        in.Text,
		MediaURLs:   in.MediaURLs,
		AccountIDs:  in.AccountIDs,
		Status:      status,
		ScheduledAt: in.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// UpdateInput represents input for updating a post
type UpdateInput struct {
	ID            string
	Text          *string
	MediaURLs     []string
	AccountIDs    []string
	ScheduledAt   *time.Time
	ClearSchedule bool // If true, clears scheduled_at and sets status to draft
}

// UpdatePost updates an existing post
func (s *Service) UpdatePost(ctx context.Context, in UpdateInput) (*entity.Post, error) {
	post, err := s.posts.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, entity.ErrPostNotFound
	}

	if !post.IsEditable() {
		return nil, entity.ErrPostNotEditable
	}

	if in.Text != nil {
		post.Text = *in.Text
	}
	if in.MediaURLs != nil {
		post.MediaURLs = in.MediaURLs
	}
	if in.AccountIDs != nil {
		post.AccountIDs = in.AccountIDs
	}

	if in.ClearSchedule {
		post.ScheduledAt = nil
		post.Status = entity.PostStatusDraft
	} else if in.ScheduledAt != nil {
		post.ScheduledAt = in.ScheduledAt
		post.Status = entity.PostStatusScheduled
	}

	post.UpdatedAt = time.Now()

	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// GetPost retrieves a post by ID
func (s *Service) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, entity.ErrPostNotFound
	}

	return post, nil
}

// DeletePost deletes a post
func (s *Service) DeletePost(ctx context.Context, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return entity.ErrPostNotFound
	}

	if !post.IsDeletable() {
		return entity.ErrPostNotDeletable
	}

	return s.posts.Delete(ctx, id)
}

// ListInput represents input for listing posts
type ListInput struct {
	Status    *entity.PostStatus
	AccountID string
	Limit     int
	Offset    int
}

// ListOutput represents output from listing posts
type ListOutput struct {
	Posts []entity.Post
	Total int64
}

// ListPosts retrieves posts with filtering
func (s *Service) ListPosts(ctx context.Context, in ListInput) (*ListOutput, error) {
	filter := dao.PostFilter{
		Status:    in.Status,
		AccountID: in.AccountID,
	}

	opts := dao.ListOptions{
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	posts, err := s.posts.List(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Posts: posts, Total: total}, nil
}

// GetDueForPublishing retrieves all scheduled posts that are due
func (s *Service) GetDueForPublishing(ctx context.Context) ([]entity.Post, error) {
	return s.posts.GetDueForPublishing(ctx, time.Now())
}

// MarkAsPublished marks a post as successfully handed to the provider
func (s *Service) MarkAsPublished(ctx context.Context, id string, providerResult string) error {
	return s.posts.SetPublished(ctx, id, providerResult, time.Now())
}

// MarkAsFailed marks a post as failed with error message
func (s *Service) MarkAsFailed(ctx context.Context, id string, errorMsg string) error {
	return s.posts.SetFailed(ctx, id, errorMsg)
}

// SaveAsDraft saves a post as draft (removes scheduled time)
func (s *Service) SaveAsDraft(ctx context.Context, id string) (*entity.Post, error) {
	return s.UpdatePost(ctx, UpdateInput{
		ID:            id,
		ClearSchedule: true,
	})
}

// Schedule schedules a post for a specific time
func (s *Service) Schedule(ctx context.Context, id string, scheduledAt time.Time) (*entity.Post, error) {
	return s.UpdatePost(ctx, UpdateInput{
		ID:          id,
		ScheduledAt: &scheduledAt,
	})
}
