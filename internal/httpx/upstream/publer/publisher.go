package publer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoValidAccounts is returned when none of the requested
	// account ids match an account in the workspace directory.
	ErrNoValidAccounts = errors.New("no valid accounts found for the provided IDs")

	// ErrEmptyPost is returned when a post has neither text nor media.
	ErrEmptyPost = errors.New("post requires text or media")
)

// Content types Publer distinguishes per network entry.
const (
	contentTypeStatus = "status"
	contentTypePhoto  = "photo"
	contentTypeVideo  = "video"
)

// Publisher handles the complete fan-out workflow against Publer:
// account resolution, media ingestion and the bulk post submission.
type Publisher struct {
	client *Client
}

// NewPublisher creates a new Publer publisher
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishInput represents input for publishing a post
type PublishInput struct {
	AccountIDs  []string
	Text        string
	MediaURLs   []string
	ScheduledAt *time.Time // nil means post now
}

// PublishOutput represents the provider's response to a submission.
// Publer is the system of record for the resulting post; the raw body
// is returned for the caller to interpret.
type PublishOutput struct {
	Raw json.RawMessage
}

// networkContent is the per-network section of a post submission
type networkContent struct {
	Text     string   `json:"text"`
	MediaIDs []string `json:"media_ids,omitempty"`
	Type     string   `json:"type"`
}

// postSubmission is a single post inside the bulk envelope
type postSubmission struct {
	Accounts    []string                   `json:"accounts"`
	Networks    map[Network]networkContent `json:"networks"`
	ScheduledAt string                     `json:"scheduled_at"`
}

// bulkEnvelope is the wrapper Publer requires around post submissions
type bulkEnvelope struct {
	Bulk  bulkState        `json:"bulk"`
	Posts []postSubmission `json:"posts"`
}

type bulkState struct {
	State string `json:"state"`
}

// Publish fans one post out to every requested account. The flow is
// strictly sequential: resolve workspace, fetch the account directory,
// ingest each media URL one at a time (order is preserved in the
// resulting media ids), assemble the bulk submission and submit it.
// A failure at any step aborts the whole attempt; a post with only a
// subset of its intended media is never submitted.
func (p *Publisher) Publish(ctx context.Context, in PublishInput) (*PublishOutput, error) {
	if len(in.AccountIDs) == 0 {
		return nil, ErrNoValidAccounts
	}
	if in.Text == "" && len(in.MediaURLs) == 0 {
		return nil, ErrEmptyPost
	}

	accounts, err := p.client.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	targets := filterAccounts(accounts, in.AccountIDs)
	if len(targets) == 0 {
		return nil, ErrNoValidAccounts
	}

	mediaIDs := make([]string, 0, len(in.MediaURLs))
	for _, url := range in.MediaURLs {
		id, err := p.client.UploadMediaFromURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("uploading media %s: %w", url, err)
		}
		mediaIDs = append(mediaIDs, id)
	}

	post := buildSubmission(targets, in.Text, in.MediaURLs, mediaIDs, in.ScheduledAt)

	envelope := bulkEnvelope{
		Bulk:  bulkState{State: "scheduled"},
		Posts: []postSubmission{post},
	}

	var raw json.RawMessage
	if err := p.client.do(ctx, http.MethodPost, "/posts/schedule", envelope, &raw); err != nil {
		return nil, fmt.Errorf("scheduling post: %w", err)
	}

	return &PublishOutput{Raw: raw}, nil
}

// filterAccounts keeps directory accounts whose id is in ids
func filterAccounts(accounts []Account, ids []string) []Account {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var targets []Account
	for _, a := range accounts {
		if _, ok := wanted[a.ID]; ok {
			targets = append(targets, a)
		}
	}
	return targets
}

// buildSubmission assembles a post submission for the target accounts.
// The submission carries one networks entry per distinct network key:
// Publer addresses accounts separately from per-network content, so
// accounts sharing a network share the same text and media. Without a
// scheduled time the current time is used, which is Publer's
// documented equivalent of posting immediately.
func buildSubmission(targets []Account, text string, mediaURLs, mediaIDs []string, scheduledAt *time.Time) postSubmission {
	contentType := contentTypeStatus
	if len(mediaIDs) > 0 {
		contentType = contentTypePhoto
		for _, url := range mediaURLs {
			if isVideoURL(url) {
				contentType = contentTypeVideo
				break
			}
		}
	}

	networks := make(map[Network]networkContent)
	for _, a := range targets {
		key := a.Network()
		if _, ok := networks[key]; ok {
			continue
		}
		networks[key] = networkContent{
			Text:     text,
			MediaIDs: mediaIDs,
			Type:     contentType,
		}
	}

	when := time.Now().UTC()
	if scheduledAt != nil {
		when = *scheduledAt
	}

	accountIDs := make([]string, len(targets))
	for i, a := range targets {
		accountIDs[i] = a.ID
	}

	return postSubmission{
		Accounts:    accountIDs,
		Networks:    networks,
		ScheduledAt: when.Format(time.RFC3339),
	}
}

// isVideoURL is a fragile heuristic: Publer needs the content type up
// front and the only signal available at this point is the URL itself.
func isVideoURL(url string) bool {
	return strings.HasSuffix(url, ".mp4") || strings.Contains(url, "video")
}
