package entity

import (
	"time"
)

// PostStatus represents the current status of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// Post represents one composed post fanned out to multiple social
// accounts. AccountIDs are provider-side account ids; MediaURLs are
// public URLs the provider ingests at publish time.
type Post struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	MediaURLs      []string   `json:"media_urls"`
	AccountIDs     []string   `json:"account_ids"`
	Status         PostStatus `json:"status"`
	ProviderResult string     `json:"provider_result,omitempty"` // raw provider response after publishing
	ErrorMessage   string     `json:"error_message,omitempty"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsEditable returns true if the post can be edited
func (p *Post) IsEditable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusScheduled || p.Status == PostStatusFailed
}

// IsDeletable returns true if the post can be deleted
func (p *Post) IsDeletable() bool {
	return p.Status != PostStatusPublished
}

// CanPublish returns true if the post is ready to be sent to the provider
func (p *Post) CanPublish() bool {
	return p.Status != PostStatusPublished && len(p.AccountIDs) > 0
}

// Validate validates the post before persisting
func (p *Post) Validate() error {
	if len(p.AccountIDs) == 0 {
		return ErrNoAccounts
	}

	if p.Text == "" && len(p.MediaURLs) == 0 {
		return ErrEmptyPost
	}

	if p.Status == PostStatusScheduled && p.ScheduledAt == nil {
		return ErrMissingSchedule
	}

	if p.Status == PostStatusScheduled && p.ScheduledAt.Before(time.Now()) {
		return ErrScheduledTimeInPast
	}

	return nil
}
