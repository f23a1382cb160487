package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/postbridge/internal/domain/post/entity"
	"github.com/vadim/postbridge/internal/domain/post/policy"
	"github.com/vadim/postbridge/internal/httpx/response"
	"github.com/vadim/postbridge/internal/httpx/upstream/publer"
)

// PostPolicy defines the interface for post operations
// Interface is defined by consumer (handler), not provider (policy)
type PostPolicy interface {
	CreatePost(ctx context.Context, in policy.CreatePostInput) (*entity.Post, error)
	UpdatePost(ctx context.Context, in policy.UpdatePostInput) (*entity.Post, error)
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, in policy.ListPostsInput) (*policy.ListPostsOutput, error)
	PublishNow(ctx context.Context, id string) (*entity.Post, error)
	PublishDirect(ctx context.Context, in policy.PublishInput) (*policy.PublishOutput, error)
	SchedulePost(ctx context.Context, id string, scheduledAt time.Time) (*entity.Post, error)
	SaveAsDraft(ctx context.Context, id string) (*entity.Post, error)
}

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	policy PostPolicy
}

// NewPostHandler creates a new post handler
func NewPostHandler(p PostPolicy) *PostHandler {
	return &PostHandler{policy: p}
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Post("/publish", h.PublishDirect())

	r.Route("/posts", func(r chi.Router) {
		r.Post("/", h.Create())
		r.Get("/", h.List())
		r.Get("/{id}", h.Get())
		r.Put("/{id}", h.Update())
		r.Delete("/{id}", h.Delete())
		r.Post("/{id}/publish", h.PublishNow())
		r.Post("/{id}/schedule", h.Schedule())
		r.Post("/{id}/draft", h.SaveAsDraft())
	})
}

// PublishRequest represents the request body for direct publishing
type PublishRequest struct {
	Accounts    []string `json:"accounts"`
	Text        string   `json:"text"`
	Media       []string `json:"media,omitempty"`
	ScheduledAt *string  `json:"scheduled_at,omitempty"` // RFC3339 format
}

// PublishDirect handles POST /publish: fan one post out through the
// provider without persisting a draft first.
func (h *PostHandler) PublishDirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		scheduledAt, err := parseScheduledAt(req.ScheduledAt)
		if err != nil {
			response.BadRequest(w, "invalid scheduled_at format, use RFC3339")
			return
		}

		out, err := h.policy.PublishDirect(r.Context(), policy.PublishInput{
			AccountIDs:  req.Accounts,
			Text:        req.Text,
			MediaURLs:   req.Media,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			handlePublishError(w, err)
			return
		}

		response.OK(w, json.RawMessage(out.Raw))
	}
}

// CreateRequest represents the request body for creating a post
type CreateRequest struct {
	Text        string   `json:"text"`
	Media       []string `json:"media,omitempty"`
	Accounts    []string `json:"accounts"`
	ScheduledAt *string  `json:"scheduled_at,omitempty"` // RFC3339 format
	PublishNow  bool     `json:"publish_now,omitempty"`
}

// Create handles POST /posts
func (h *PostHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		scheduledAt, err := parseScheduledAt(req.ScheduledAt)
		if err != nil {
			response.BadRequest(w, "invalid scheduled_at format, use RFC3339")
			return
		}

		post, err := h.policy.CreatePost(r.Context(), policy.CreatePostInput{
			Text:        req.Text,
			MediaURLs:   req.Media,
			AccountIDs:  req.Accounts,
			ScheduledAt: scheduledAt,
			PublishNow:  req.PublishNow,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.Created(w, post)
	}
}

// UpdateRequest represents the request body for updating a post
type UpdateRequest struct {
	Text          *string  `json:"text,omitempty"`
	Media         []string `json:"media,omitempty"`
	Accounts      []string `json:"accounts,omitempty"`
	ScheduledAt   *string  `json:"scheduled_at,omitempty"`
	ClearSchedule bool     `json:"clear_schedule,omitempty"`
}

// Update handles PUT /posts/{id}
func (h *PostHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		scheduledAt, err := parseScheduledAt(req.ScheduledAt)
		if err != nil {
			response.BadRequest(w, "invalid scheduled_at format, use RFC3339")
			return
		}

		post, err := h.policy.UpdatePost(r.Context(), policy.UpdatePostInput{
			ID:            id,
			Text:          req.Text,
			MediaURLs:     req.Media,
			AccountIDs:    req.Accounts,
			ScheduledAt:   scheduledAt,
			ClearSchedule: req.ClearSchedule,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		post, err := h.policy.GetPost(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := h.policy.DeletePost(r.Context(), id); err != nil {
			handleDomainError(w, err)
			return
		}

		response.NoContent(w)
	}
}

// ListResponse represents the response for listing posts
type ListResponse struct {
	Posts  []entity.Post `json:"posts"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// List handles GET /posts
func (h *PostHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var status *entity.PostStatus
		if s := q.Get("status"); s != "" {
			ps, err := parsePostStatus(s)
			if err != nil {
				response.BadRequest(w, err.Error())
				return
			}
			status = &ps
		}

		limit := 50
		offset := 0
		if l := q.Get("limit"); l != "" {
			li, err := strconv.Atoi(l)
			if err != nil || li < 1 {
				response.BadRequest(w, "invalid limit")
				return
			}
			if li > 100 {
				li = 100
			}
			limit = li
		}
		if o := q.Get("offset"); o != "" {
			oi, err := strconv.Atoi(o)
			if err != nil || oi < 0 {
				response.BadRequest(w, "invalid offset")
				return
			}
			offset = oi
		}

		out, err := h.policy.ListPosts(r.Context(), policy.ListPostsInput{
			Status:    status,
			AccountID: q.Get("account_id"),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, ListResponse{
			Posts:  out.Posts,
			Total:  out.Total,
			Limit:  limit,
			Offset: offset,
		})
	}
}

// PublishNow handles POST /posts/{id}/publish
func (h *PostHandler) PublishNow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		post, err := h.policy.PublishNow(r.Context(), id)
		if err != nil {
			handlePublishError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// ScheduleRequest represents the request body for scheduling a post
type ScheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"` // RFC3339 format
}

// Schedule handles POST /posts/{id}/schedule
func (h *PostHandler) Schedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			response.BadRequest(w, "invalid scheduled_at format, use RFC3339")
			return
		}

		post, err := h.policy.SchedulePost(r.Context(), id, scheduledAt)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// SaveAsDraft handles POST /posts/{id}/draft
func (h *PostHandler) SaveAsDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		post, err := h.policy.SaveAsDraft(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, post)
	}
}

// Helper functions

func parseScheduledAt(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePostStatus(s string) (entity.PostStatus, error) {
	switch s {
	case "draft":
		return entity.PostStatusDraft, nil
	case "scheduled":
		return entity.PostStatusScheduled, nil
	case "published":
		return entity.PostStatusPublished, nil
	case "failed":
		return entity.PostStatusFailed, nil
	default:
		return "", entity.ErrInvalidStatus
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrPostNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrPostNotEditable), errors.Is(err, entity.ErrPostNotDeletable):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrNoAccounts), errors.Is(err, entity.ErrEmptyPost),
		errors.Is(err, entity.ErrMissingSchedule), errors.Is(err, entity.ErrScheduledTimeInPast),
		errors.Is(err, entity.ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

// handlePublishError translates provider-side failures into operator
// facing responses. Provider error bodies are passed through so the
// operator sees what Publer actually said.
func handlePublishError(w http.ResponseWriter, err error) {
	var apiErr *publer.APIError
	var jobErr *publer.JobFailedError

	switch {
	case errors.Is(err, publer.ErrNoValidAccounts), errors.Is(err, publer.ErrEmptyPost):
		response.BadRequest(w, err.Error())
	case errors.Is(err, publer.ErrNoWorkspace):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, publer.ErrNoJobID), errors.Is(err, publer.ErrJobTimedOut):
		response.Error(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &jobErr):
		response.Error(w, http.StatusBadGateway, jobErr.Error())
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			response.Unauthorized(w, apiErr.Error())
			return
		}
		response.Error(w, http.StatusBadGateway, apiErr.Error())
	default:
		handleDomainError(w, err)
	}
}
