package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/strata-io/strata-client/internal/http"
	"github.com/strata-io/strata-client/pkg/strata"
)

// AutoscalingPoliciesClient implements the strata.AutoscalingPoliciesClient interface.
type AutoscalingPoliciesClient struct {
	httpClient *http.Client
}

// NewAutoscalingPoliciesClient creates a new autoscaling policies client.
func NewAutoscalingPoliciesClient(httpClient *http.Client) *AutoscalingPoliciesClient {
	return &AutoscalingPoliciesClient{
		httpClient: httpClient,
	}
}

// Create implements the autoscaling policy create operation.
func (c *AutoscalingPoliciesClient) Create(ctx context.Context, request *strata.AutoscalingPolicyCreateRequest) (*strata.AutoscalingPolicy, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/autoscaling-policies", request)
	if err != nil {
		return nil, fmt.Errorf("creating autoscaling policy: %w", err)
	}

	var policy strata.AutoscalingPolicy

	err = json.Unmarshal(resp.Body, &policy)
	if err != nil {
		return nil, fmt.Errorf("parsing autoscaling policy response: %w", err)
	}

	return &policy, nil
}

// Get implements the autoscaling policy get operation.
func (c *AutoscalingPoliciesClient) Get(ctx context.Context, id string) (*strata.AutoscalingPolicy, error) {
	path := "/v1/autoscaling-policies/" + id

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting autoscaling policy: %w", err)
	}

	var policy strata.AutoscalingPolicy

	err = json.Unmarshal(resp.Body, &policy)
	if err != nil {
		return nil, fmt.Errorf("parsing autoscaling policy response: %w", err)
	}

	return &policy, nil
}

// Update implements the autoscaling policy update operation. The full policy
// is replaced; policies attached to running clusters pick up the change on
// the next evaluation cycle.
func (c *AutoscalingPoliciesClient) Update(ctx context.Context, id string, request *strata.AutoscalingPolicyUpdateRequest) (*strata.AutoscalingPolicy, error) {
	path := "/v1/autoscaling-policies/" + id

	resp, err := c.httpClient.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating autoscaling policy: %w", err)
	}

	var policy strata.AutoscalingPolicy

	err = json.Unmarshal(resp.Body, &policy)
	if err != nil {
		return nil, fmt.Errorf("parsing autoscaling policy response: %w", err)
	}

	return &policy, nil
}

// Delete implements the autoscaling policy delete operation. Policies in use
// by a cluster cannot be deleted.
func (c *AutoscalingPoliciesClient) Delete(ctx context.Context, id string) error {
	path := "/v1/autoscaling-policies/" + id

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting autoscaling policy: %w", err)
	}

	return nil
}

// List implements the autoscaling policy list operation, returning a single page.
func (c *AutoscalingPoliciesClient) List(ctx context.Context, params *strata.QueryParams) (*strata.AutoscalingPoliciesList, error) {
	return c.ListWithPath(ctx, "/v1/autoscaling-policies", params)
}

// ListWithPath lists autoscaling policies from the given path.
func (c *AutoscalingPoliciesClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.AutoscalingPoliciesList, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing autoscaling policies: %w", err)
	}

	var result strata.AutoscalingPoliciesList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing autoscaling policies list response: %w", err)
	}

	return &result, nil
}

// ListAll follows continuation tokens and returns all autoscaling policies.
func (c *AutoscalingPoliciesClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.AutoscalingPolicy, error) {
	return strata.FetchAllPages[strata.AutoscalingPolicy](ctx, c, "/v1/autoscaling-policies", params, nil)
}

// Pager fetches the first page of autoscaling policies and returns a pager
// positioned on it.
func (c *AutoscalingPoliciesClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.AutoscalingPolicy], error) {
	first, err := c.ListWithPath(ctx, "/v1/autoscaling-policies", params)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, p *strata.QueryParams, _ map[string]string) (*strata.AutoscalingPoliciesList, error) {
		return c.ListWithPath(ctx, "/v1/autoscaling-policies", p)
	}

	return strata.NewPager(fetch, params, first, nil), nil
}
