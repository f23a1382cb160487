package policy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vadim/postbridge/internal/domain/post/entity"
	"github.com/vadim/postbridge/internal/domain/post/service"
)

// ProviderPublisher defines the interface for fanning a post out
// through the scheduling provider.
// This interface is defined here (consumer) not in the upstream package (provider)
type ProviderPublisher interface {
	Publish(ctx context.Context, in PublishInput) (*PublishOutput, error)
}

// PublishInput represents input for publishing through the provider
type PublishInput struct {
	AccountIDs  []string
	Text        string
	MediaURLs   []string
	ScheduledAt *time.Time
}

// PublishOutput carries the provider's raw response
type PublishOutput struct {
	Raw json.RawMessage
}

// Policy orchestrates post use-cases
type Policy struct {
	svc      *service.Service
	provider ProviderPublisher
}

// New creates a new post policy
func New(svc *service.Service, provider ProviderPublisher) *Policy {
	return &Policy{
		svc:      svc,
		provider: provider,
	}
}

// CreatePostInput represents input for creating a post
type CreatePostInput struct {
	Text        string
	MediaURLs   []string
	AccountIDs  []string
	ScheduledAt *time.Time
	PublishNow  bool // If true, hand to the provider immediately after creation
}

// CreatePost creates a new post (draft or scheduled)
func (p *Policy) CreatePost(ctx context.Context, in CreatePostInput) (*entity.Post, error) {
	post, err := p.svc.CreatePost(ctx, service.CreateInput{
		Text:        in.Text,
		MediaURLs:   in.MediaURLs,
		AccountIDs:  in.AccountIDs,
		ScheduledAt: in.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	if in.PublishNow {
		return p.PublishNow(ctx, post.ID)
	}

	return post, nil
}

// UpdatePostInput represents input for updating a post
type UpdatePostInput struct {
	ID            string
	Text          *string
	MediaURLs     []string
	AccountIDs    []string
	ScheduledAt   *time.Time
	ClearSchedule bool
}

// UpdatePost updates an existing post
func (p *Policy) UpdatePost(ctx context.Context, in UpdatePostInput) (*entity.Post, error) {
	return p.svc.UpdatePost(ctx, service.UpdateInput{
		ID:            in.ID,
		Text:          in.Text,
		MediaURLs:     in.MediaURLs,
		AccountIDs:    in.AccountIDs,
		ScheduledAt:   in.ScheduledAt,
		ClearSchedule: in.ClearSchedule,
	})
}

// GetPost retrieves a post by ID
func (p *Policy) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	return p.svc.GetPost(ctx, id)
}

// DeletePost deletes a post. Posts already handed to the provider
// stay there; only the local record is removed.
func (p *Policy) DeletePost(ctx context.Context, id string) error {
	return p.svc.DeletePost(ctx, id)
}

// ListPostsInput represents input for listing posts
type ListPostsInput struct {
	Status    *entity.PostStatus
	AccountID string
	Limit     int
	Offset    int
}

// ListPostsOutput represents output from listing posts
type ListPostsOutput struct {
	Posts []entity.Post
	Total int64
}

// ListPosts retrieves posts with filtering
func (p *Policy) ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsOutput, error) {
	out, err := p.svc.ListPosts(ctx, service.ListInput{
		Status:    in.Status,
		AccountID: in.AccountID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListPostsOutput{Posts: out.Posts, Total: out.Total}, nil
}

// PublishNow hands a stored post to the provider immediately. The
// post's own scheduled time is not forwarded: publish-now means the
// provider receives the current time.
func (p *Policy) PublishNow(ctx context.Context, id string) (*entity.Post, error) {
	post, err := p.svc.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Status == entity.PostStatusPublished {
		return post, nil // Already published
	}

	if !post.CanPublish() {
		return nil, entity.ErrPostNotEditable
	}

	result, err := p.provider.Publish(ctx, PublishInput{
		AccountIDs: post.AccountIDs,
		Text:       post.Text,
		MediaURLs:  post.MediaURLs,
	})
	if err != nil {
		_ = p.svc.MarkAsFailed(ctx, id, err.Error())
		return nil, err
	}

	if err := p.svc.MarkAsPublished(ctx, id, string(result.Raw)); err != nil {
		return nil, err
	}

	return p.svc.GetPost(ctx, id)
}

// PublishDirect fans a post out through the provider without storing
// a draft first. This is the single operation the surrounding
// application needs from the publishing core.
func (p *Policy) PublishDirect(ctx context.Context, in PublishInput) (*PublishOutput, error) {
	return p.provider.Publish(ctx, in)
}

// SchedulePost schedules a post for a specific time
func (p *Policy) SchedulePost(ctx context.Context, id string, scheduledAt time.Time) (*entity.Post, error) {
	if scheduledAt.Before(time.Now()) {
		return nil, entity.ErrScheduledTimeInPast
	}

	return p.svc.Schedule(ctx, id, scheduledAt)
}

// SaveAsDraft saves a post as draft (removes scheduling)
func (p *Policy) SaveAsDraft(ctx context.Context, id string) (*entity.Post, error) {
	return p.svc.SaveAsDraft(ctx, id)
}

// ProcessScheduledPosts hands every due scheduled post to the
// provider. Called periodically by the scheduler.
func (p *Policy) ProcessScheduledPosts(ctx context.Context) error {
	posts, err := p.svc.GetDueForPublishing(ctx)
	if err != nil {
		return err
	}

	for _, post := range posts {
		// Failures are recorded on the post by PublishNow; one bad
		// post must not stall the rest of the queue.
		_, err := p.PublishNow(ctx, post.ID)
		if err != nil {
			continue
		}
	}

	return nil
}
