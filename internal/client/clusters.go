package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/strata-io/strata-client/internal/http"
	"github.com/strata-io/strata-client/pkg/strata"
)

// ClustersClient implements the strata.ClustersClient interface.
type ClustersClient struct {
	httpClient *http.Client
}

// NewClustersClient creates a new clusters client.
func NewClustersClient(httpClient *http.Client) *ClustersClient {
	return &ClustersClient{
		httpClient: httpClient,
	}
}

// Create implements the cluster create operation. The API accepts the request
// asynchronously and returns an operation tracking the provisioning.
func (c *ClustersClient) Create(ctx context.Context, request *strata.ClusterCreateRequest) (*strata.Operation, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/clusters", request)
	if err != nil {
		return nil, fmt.Errorf("creating cluster: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// Get implements the cluster get operation.
func (c *ClustersClient) Get(ctx context.Context, name string) (*strata.Cluster, error) {
	path := "/v1/clusters/" + name

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting cluster: %w", err)
	}

	var cluster strata.Cluster

	err = json.Unmarshal(resp.Body, &cluster)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster response: %w", err)
	}

	return &cluster, nil
}

// Update implements the cluster update operation. Only the fields named in
// the request's update mask are changed; the call returns an operation.
func (c *ClustersClient) Update(ctx context.Context, name string, request *strata.ClusterUpdateRequest) (*strata.Operation, error) {
	path := "/v1/clusters/" + name

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating cluster: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// Delete implements the cluster delete operation.
func (c *ClustersClient) Delete(ctx context.Context, name string) (*strata.Operation, error) {
	path := "/v1/clusters/" + name

	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("deleting cluster: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// Diagnose gathers diagnostic data for a cluster and returns an operation
// whose result contains the location of the diagnostic output.
func (c *ClustersClient) Diagnose(ctx context.Context, name string) (*strata.Operation, error) {
	path := "/v1/clusters/" + name + ":diagnose"

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("diagnosing cluster: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// List implements the cluster list operation, returning a single page.
func (c *ClustersClient) List(ctx context.Context, params *strata.QueryParams) (*strata.ClustersList, error) {
	return c.ListWithPath(ctx, "/v1/clusters", params)
}

// ListWithPath lists clusters from the given path. It satisfies the
// pagination client contract used by the pager helpers.
func (c *ClustersClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.ClustersList, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	var result strata.ClustersList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing clusters list response: %w", err)
	}

	return &result, nil
}

// ListAll follows continuation tokens until the collection is exhausted and
// returns all clusters.
func (c *ClustersClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.Cluster, error) {
	return strata.FetchAllPages[strata.Cluster](ctx, c, "/v1/clusters", params, nil)
}

// Pager fetches the first page of clusters and returns a pager positioned on it.
func (c *ClustersClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.Cluster], error) {
	first, err := c.ListWithPath(ctx, "/v1/clusters", params)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, p *strata.QueryParams, _ map[string]string) (*strata.ClustersList, error) {
		return c.ListWithPath(ctx, "/v1/clusters", p)
	}

	return strata.NewPager(fetch, params, first, nil), nil
}
