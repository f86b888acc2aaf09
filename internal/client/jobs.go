package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/internal/http"
	"github.com/strata-io/strata-client/pkg/strata"
)

// JobsClient implements the strata.JobsClient interface.
type JobsClient struct {
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client) *JobsClient {
	return &JobsClient{
		httpClient:   httpClient,
		pollInterval: constants.DefaultPollInterval,
		pollTimeout:  constants.DefaultJobPollTimeout,
	}
}

// Submit implements the job submit operation.
func (c *JobsClient) Submit(ctx context.Context, request *strata.JobSubmitRequest) (*strata.Job, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/jobs", request)
	if err != nil {
		return nil, fmt.Errorf("submitting job: %w", err)
	}

	var job strata.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Get implements the job get operation.
func (c *JobsClient) Get(ctx context.Context, jobID string) (*strata.Job, error) {
	path := "/v1/jobs/" + jobID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job strata.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Update implements the job update operation. Only labels can be changed
// once a job has been submitted.
func (c *JobsClient) Update(ctx context.Context, jobID string, request *strata.JobUpdateRequest) (*strata.Job, error) {
	path := "/v1/jobs/" + jobID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating job: %w", err)
	}

	var job strata.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Cancel implements the job cancel operation. Cancellation is asynchronous;
// the returned job reflects the state at the time of the request.
func (c *JobsClient) Cancel(ctx context.Context, jobID string) (*strata.Job, error) {
	path := "/v1/jobs/" + jobID + ":cancel"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("cancelling job: %w", err)
	}

	var job strata.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Delete implements the job delete operation. Only terminal jobs can be deleted.
func (c *JobsClient) Delete(ctx context.Context, jobID string) error {
	path := "/v1/jobs/" + jobID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}

	return nil
}

// List implements the job list operation, returning a single page.
func (c *JobsClient) List(ctx context.Context, params *strata.QueryParams) (*strata.JobsList, error) {
	return c.ListWithPath(ctx, "/v1/jobs", params)
}

// ListWithPath lists jobs from the given path.
func (c *JobsClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.JobsList, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	var result strata.JobsList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing jobs list response: %w", err)
	}

	return &result, nil
}

// ListAll follows continuation tokens and returns all jobs.
func (c *JobsClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.Job, error) {
	return strata.FetchAllPages[strata.Job](ctx, c, "/v1/jobs", params, nil)
}

// Pager fetches the first page of jobs and returns a pager positioned on it.
func (c *JobsClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.Job], error) {
	first, err := c.ListWithPath(ctx, "/v1/jobs", params)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, p *strata.QueryParams, _ map[string]string) (*strata.JobsList, error) {
		return c.ListWithPath(ctx, "/v1/jobs", p)
	}

	return strata.NewPager(fetch, params, first, nil), nil
}

// PollUntilComplete polls a job until it reaches a terminal state or the
// timeout elapses. The first check happens immediately; subsequent checks
// use the configured poll interval.
func (c *JobsClient) PollUntilComplete(ctx context.Context, jobID string) (*strata.Job, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// Check immediately before waiting for the first tick
	job, done, err := c.checkJobState(pollCtx, jobID)
	if err != nil || done {
		return job, err
	}

	for {
		select {
		case <-pollCtx.Done():
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: job %s", strata.ErrPollTimeout, jobID)
			}

			return nil, fmt.Errorf("polling job: %w", pollCtx.Err())
		case <-ticker.C:
			job, done, err := c.checkJobState(pollCtx, jobID)
			if err != nil || done {
				return job, err
			}
		}
	}
}

// checkJobState fetches a job and reports whether it reached a terminal
// state. Failed and cancelled jobs are returned alongside an error.
func (c *JobsClient) checkJobState(ctx context.Context, jobID string) (*strata.Job, bool, error) {
	job, err := c.Get(ctx, jobID)
	if err != nil {
		return nil, false, err
	}

	switch job.Status.State {
	case constants.JobStateDone:
		return job, true, nil
	case constants.JobStateError:
		return job, true, fmt.Errorf("%w: job %s", strata.ErrOperationFailed, jobID)
	case constants.JobStateCancelled:
		return job, true, fmt.Errorf("%w: job %s", strata.ErrOperationCancelled, jobID)
	default:
		return job, false, nil
	}
}
