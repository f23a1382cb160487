package publer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNoJobID is returned when the media ingest call succeeds but
	// carries no job id. That indicates a malformed request rather
	// than a transient condition, so it is never retried.
	ErrNoJobID = errors.New("no job id returned from media upload")

	// ErrJobTimedOut is returned when a media job does not reach a
	// terminal state within the polling budget.
	ErrJobTimedOut = errors.New("publer media job timed out")
)

// JobFailedError is returned when Publer reports a media job as
// failed. Detail carries the provider's error body verbatim.
type JobFailedError struct {
	JobID  string
	Detail json.RawMessage
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("publer job %s failed: %s", e.JobID, string(e.Detail))
}

type mediaFromURLRequest struct {
	Media []mediaSource `json:"media"`
}

type mediaSource struct {
	URL string `json:"url"`
}

type mediaFromURLResponse struct {
	JobID string `json:"job_id"`
}

type jobStatus struct {
	Status  string          `json:"status"`
	Payload []uploadedMedia `json:"payload"`
	Error   json.RawMessage `json:"error"`
}

type uploadedMedia struct {
	ID string `json:"id"`
}

// UploadMediaFromURL asks Publer to ingest a remote media URL and
// blocks until the resulting job completes, returning the id of the
// uploaded media. Ingestion is asynchronous on the provider side: the
// initial call only returns a job id, which is then polled until a
// terminal state or until the attempt budget runs out.
func (c *Client) UploadMediaFromURL(ctx context.Context, url string) (string, error) {
	var res mediaFromURLResponse
	err := c.do(ctx, http.MethodPost, "/media/from-url", mediaFromURLRequest{
		Media: []mediaSource{{URL: url}},
	}, &res)
	if err != nil {
		return "", fmt.Errorf("initiating media upload: %w", err)
	}

	if res.JobID == "" {
		return "", ErrNoJobID
	}

	payload, err := c.pollJob(ctx, res.JobID)
	if err != nil {
		return "", err
	}

	if len(payload) == 0 || payload[0].ID == "" {
		return "", fmt.Errorf("job %s completed but returned no media id", res.JobID)
	}

	return payload[0].ID, nil
}

// pollJob polls a job until it reaches a terminal state. Any status
// other than the terminal values counts as still pending. The wait
// between polls is cooperative: the goroutine suspends on a timer and
// honours context cancellation.
func (c *Client) pollJob(ctx context.Context, jobID string) ([]uploadedMedia, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		var job jobStatus
		if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID, nil, &job); err != nil {
			return nil, fmt.Errorf("checking job status: %w", err)
		}

		switch job.Status {
		case "complete", "completed":
			return job.Payload, nil
		case "failed":
			return nil, &JobFailedError{JobID: jobID, Detail: job.Error}
		}
	}

	return nil, ErrJobTimedOut
}
