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

// OperationsClient implements the strata.OperationsClient interface.
type OperationsClient struct {
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewOperationsClient creates a new operations client.
func NewOperationsClient(httpClient *http.Client) *OperationsClient {
	return &OperationsClient{
		httpClient:   httpClient,
		pollInterval: constants.DefaultPollInterval,
		pollTimeout:  constants.DefaultOperationPollTimeout,
	}
}

// Get implements the operation get operation.
func (c *OperationsClient) Get(ctx context.Context, name string) (*strata.Operation, error) {
	path := "/v1/operations/" + name

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting operation: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// Cancel requests cancellation of a running operation. Cancellation is best
// effort; the returned operation reflects the state at the time of the call.
func (c *OperationsClient) Cancel(ctx context.Context, name string) (*strata.Operation, error) {
	path := "/v1/operations/" + name + ":cancel"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("cancelling operation: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// List implements the operation list operation, returning a single page.
func (c *OperationsClient) List(ctx context.Context, params *strata.QueryParams) (*strata.OperationsList, error) {
	return c.ListWithPath(ctx, "/v1/operations", params)
}

// ListWithPath lists operations from the given path.
func (c *OperationsClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.OperationsList, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	var result strata.OperationsList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing operations list response: %w", err)
	}

	return &result, nil
}

// ListAll follows continuation tokens and returns all operations.
func (c *OperationsClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.Operation, error) {
	return strata.FetchAllPages[strata.Operation](ctx, c, "/v1/operations", params, nil)
}

// Pager fetches the first page of operations and returns a pager positioned on it.
func (c *OperationsClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.Operation], error) {
	first, err := c.ListWithPath(ctx, "/v1/operations", params)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, p *strata.QueryParams, _ map[string]string) (*strata.OperationsList, error) {
		return c.ListWithPath(ctx, "/v1/operations", p)
	}

	return strata.NewPager(fetch, params, first, nil), nil
}

// PollUntilDone polls an operation until it completes or the timeout
// elapses. The first check happens immediately; subsequent checks use the
// configured poll interval. Operations that finish with an error return the
// operation alongside a wrapped error carrying the server message.
func (c *OperationsClient) PollUntilDone(ctx context.Context, name string) (*strata.Operation, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// Check immediately before waiting for the first tick
	operation, done, err := c.checkOperationState(pollCtx, name)
	if err != nil || done {
		return operation, err
	}

	for {
		select {
		case <-pollCtx.Done():
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: operation %s", strata.ErrPollTimeout, name)
			}

			return nil, fmt.Errorf("polling operation: %w", pollCtx.Err())
		case <-ticker.C:
			operation, done, err := c.checkOperationState(pollCtx, name)
			if err != nil || done {
				return operation, err
			}
		}
	}
}

// checkOperationState fetches an operation and reports whether it finished.
func (c *OperationsClient) checkOperationState(ctx context.Context, name string) (*strata.Operation, bool, error) {
	operation, err := c.Get(ctx, name)
	if err != nil {
		return nil, false, err
	}

	if !operation.Done {
		return operation, false, nil
	}

	if operation.State == constants.OperationStateCancelled {
		return operation, true, fmt.Errorf("%w: operation %s", strata.ErrOperationCancelled, name)
	}

	if operation.Error != nil {
		return operation, true, fmt.Errorf("%w: %s", strata.ErrOperationFailed, operation.Error.Message)
	}

	return operation, true, nil
}
