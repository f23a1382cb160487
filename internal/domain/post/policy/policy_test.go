package policy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/postbridge/internal/domain/post/dao"
	"github.com/vadim/postbridge/internal/domain/post/entity"
	"github.com/vadim/postbridge/internal/domain/post/service"
)

// memoryRepo is an in-memory PostRepository for tests
type memoryRepo struct {
	posts map[string]*entity.Post
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{posts: make(map[string]*entity.Post)}
}

func (r *memoryRepo) Create(ctx context.Context, post *entity.Post) error {
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	clone := *post
	return &clone, nil
}

func (r *memoryRepo) Update(ctx context.Context, post *entity.Post) error {
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter dao.PostFilter, opts dao.ListOptions) ([]entity.Post, error) {
	var posts []entity.Post
	for _, p := range r.posts {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

func (r *memoryRepo) Count(ctx context.Context, filter dao.PostFilter) (int64, error) {
	posts, _ := r.List(ctx, filter, dao.ListOptions{})
	return int64(len(posts)), nil
}

func (r *memoryRepo) GetDueForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error) {
	var due []entity.Post
	for _, p := range r.posts {
		if p.Status == entity.PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now) {
			due = append(due, *p)
		}
	}
	return due, nil
}

func (r *memoryRepo) SetPublished(ctx context.Context, id string, providerResult string, publishedAt time.Time) error {
	post := r.posts[id]
	post.Status = entity.PostStatusPublished
	post.ProviderResult = providerResult
	post.PublishedAt = &publishedAt
	post.ErrorMessage = ""
	return nil
}

func (r *memoryRepo) SetFailed(ctx context.Context, id string, errorMsg string) error {
	post := r.posts[id]
	post.Status = entity.PostStatusFailed
	post.ErrorMessage = errorMsg
	return nil
}

// fakeProvider records publish calls and returns a canned result
type fakeProvider struct {
	calls []PublishInput
	err   error
}

func (f *fakeProvider) Publish(ctx context.Context, in PublishInput) (*PublishOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &PublishOutput{Raw: json.RawMessage(`{"job_id":"bulk-1"}`)}, nil
}

func newTestPolicy(provider *fakeProvider) (*Policy, *memoryRepo) {
	repo := newMemoryRepo()
	return New(service.New(repo), provider), repo
}

func TestPublishNowMarksPublished(t *testing.T) {
	provider := &fakeProvider{}
	p, _ := newTestPolicy(provider)

	post, err := p.CreatePost(context.Background(), CreatePostInput{
		Text:       "Hello",
		AccountIDs: []string{"acc1", "acc2"},
		MediaURLs:  []string{"https://x/a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PostStatusDraft, post.Status)

	published, err := p.PublishNow(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PostStatusPublished, published.Status)
	assert.Contains(t, published.ProviderResult, "bulk-1")
	require.NotNil(t, published.PublishedAt)

	require.Len(t, provider.calls, 1)
	call := provider.calls[0]
	assert.Equal(t, []string{"acc1", "acc2"}, call.AccountIDs)
	assert.Equal(t, "Hello", call.Text)
	assert.Equal(t, []string{"https://x/a.png"}, call.MediaURLs)
	assert.Nil(t, call.ScheduledAt, "publish-now must not forward the stored schedule")
}

func TestPublishNowRecordsFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	p, repo := newTestPolicy(provider)

	post, err := p.CreatePost(context.Background(), CreatePostInput{
		Text:       "Hello",
		AccountIDs: []string{"acc1"},
	})
	require.NoError(t, err)

	_, err = p.PublishNow(context.Background(), post.ID)
	require.Error(t, err)

	stored := repo.posts[post.ID]
	assert.Equal(t, entity.PostStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "provider down")
}

func TestPublishNowIdempotentForPublished(t *testing.T) {
	provider := &fakeProvider{}
	p, _ := newTestPolicy(provider)

	post, err := p.CreatePost(context.Background(), CreatePostInput{
		Text:       "Hello",
		AccountIDs: []string{"acc1"},
	})
	require.NoError(t, err)

	_, err = p.PublishNow(context.Background(), post.ID)
	require.NoError(t, err)

	// Publishing again must not hit the provider a second time.
	_, err = p.PublishNow(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Len(t, provider.calls, 1)
}

func TestPublishDirectBypassesStorage(t *testing.T) {
	provider := &fakeProvider{}
	p, repo := newTestPolicy(provider)

	scheduledAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := p.PublishDirect(context.Background(), PublishInput{
		AccountIDs:  []string{"acc1"},
		Text:        "Direct",
		ScheduledAt: &scheduledAt,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Raw)

	assert.Empty(t, repo.posts, "direct publishing must not persist a draft")
	require.Len(t, provider.calls, 1)
	require.NotNil(t, provider.calls[0].ScheduledAt)
	assert.True(t, provider.calls[0].ScheduledAt.Equal(scheduledAt))
}

func TestSchedulePostRejectsPast(t *testing.T) {
	p, _ := newTestPolicy(&fakeProvider{})

	post, err := p.CreatePost(context.Background(), CreatePostInput{
		Text:       "Later",
		AccountIDs: []string{"acc1"},
	})
	require.NoError(t, err)

	_, err = p.SchedulePost(context.Background(), post.ID, time.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, entity.ErrScheduledTimeInPast)
}

func TestProcessScheduledPostsPublishesDue(t *testing.T) {
	provider := &fakeProvider{}
	p, repo := newTestPolicy(provider)

	due := time.Now().Add(-time.Minute)
	repo.posts["due"] = &entity.Post{
		ID:          "due",
		Text:        "Due post",
		AccountIDs:  []string{"acc1"},
		Status:      entity.PostStatusScheduled,
		ScheduledAt: &due,
	}

	future := time.Now().Add(time.Hour)
	repo.posts["future"] = &entity.Post{
		ID:          "future",
		Text:        "Future post",
		AccountIDs:  []string{"acc1"},
		Status:      entity.PostStatusScheduled,
		ScheduledAt: &future,
	}

	require.NoError(t, p.ProcessScheduledPosts(context.Background()))

	require.Len(t, provider.calls, 1)
	assert.Equal(t, "Due post", provider.calls[0].Text)
	assert.Equal(t, entity.PostStatusPublished, repo.posts["due"].Status)
	assert.Equal(t, entity.PostStatusScheduled, repo.posts["future"].Status)
}

func TestProcessScheduledPostsContinuesAfterFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	p, repo := newTestPolicy(provider)

	due := time.Now().Add(-time.Minute)
	for _, id := range []string{"a", "b"} {
		repo.posts[id] = &entity.Post{
			ID:          id,
			Text:        "Post " + id,
			AccountIDs:  []string{"acc1"},
			Status:      entity.PostStatusScheduled,
			ScheduledAt: &due,
		}
	}

	require.NoError(t, p.ProcessScheduledPosts(context.Background()))

	// Both posts were attempted despite the first failing.
	assert.Len(t, provider.calls, 2)
	assert.Equal(t, entity.PostStatusFailed, repo.posts["a"].Status)
	assert.Equal(t, entity.PostStatusFailed, repo.posts["b"].Status)
}
