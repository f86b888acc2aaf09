package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/strata-io/strata-client/internal/http"
	"github.com/strata-io/strata-client/pkg/strata"
)

// WorkflowTemplatesClient implements the strata.WorkflowTemplatesClient interface.
type WorkflowTemplatesClient struct {
	httpClient *http.Client
}

// NewWorkflowTemplatesClient creates a new workflow templates client.
func NewWorkflowTemplatesClient(httpClient *http.Client) *WorkflowTemplatesClient {
	return &WorkflowTemplatesClient{
		httpClient: httpClient,
	}
}

// Create implements the workflow template create operation.
func (c *WorkflowTemplatesClient) Create(ctx context.Context, request *strata.WorkflowTemplateCreateRequest) (*strata.WorkflowTemplate, error) {
	resp, err := c.httpClient.Post(ctx, "/v1/workflow-templates", request)
	if err != nil {
		return nil, fmt.Errorf("creating workflow template: %w", err)
	}

	var template strata.WorkflowTemplate

	err = json.Unmarshal(resp.Body, &template)
	if err != nil {
		return nil, fmt.Errorf("parsing workflow template response: %w", err)
	}

	return &template, nil
}

// Get implements the workflow template get operation.
func (c *WorkflowTemplatesClient) Get(ctx context.Context, id string) (*strata.WorkflowTemplate, error) {
	path := "/v1/workflow-templates/" + id

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting workflow template: %w", err)
	}

	var template strata.WorkflowTemplate

	err = json.Unmarshal(resp.Body, &template)
	if err != nil {
		return nil, fmt.Errorf("parsing workflow template response: %w", err)
	}

	return &template, nil
}

// Update implements the workflow template update operation. The server
// rejects the update with a failed-precondition error when the request's
// version does not match the current template version.
func (c *WorkflowTemplatesClient) Update(ctx context.Context, id string, request *strata.WorkflowTemplateUpdateRequest) (*strata.WorkflowTemplate, error) {
	path := "/v1/workflow-templates/" + id

	resp, err := c.httpClient.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating workflow template: %w", err)
	}

	var template strata.WorkflowTemplate

	err = json.Unmarshal(resp.Body, &template)
	if err != nil {
		return nil, fmt.Errorf("parsing workflow template response: %w", err)
	}

	return &template, nil
}

// Delete implements the workflow template delete operation.
func (c *WorkflowTemplatesClient) Delete(ctx context.Context, id string) error {
	path := "/v1/workflow-templates/" + id

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting workflow template: %w", err)
	}

	return nil
}

// Instantiate runs a stored workflow template and returns the operation
// tracking the workflow. A non-zero Version in the request pins the run to
// that template version.
func (c *WorkflowTemplatesClient) Instantiate(ctx context.Context, id string, request *strata.InstantiateRequest) (*strata.Operation, error) {
	path := "/v1/workflow-templates/" + id + ":instantiate"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("instantiating workflow template: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// InstantiateInline runs a workflow template provided in the request body
// without storing it first.
func (c *WorkflowTemplatesClient) InstantiateInline(ctx context.Context, request *strata.InstantiateInlineRequest) (*strata.Operation, error) {
	path := "/v1/workflow-templates:instantiateInline"

	var query url.Values
	if request != nil && request.RequestID != "" {
		query = url.Values{"request_id": []string{request.RequestID}}
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   path,
		Query:  query,
		Body:   request.Template,
	})
	if err != nil {
		return nil, fmt.Errorf("instantiating inline workflow template: %w", err)
	}

	var operation strata.Operation

	err = json.Unmarshal(resp.Body, &operation)
	if err != nil {
		return nil, fmt.Errorf("parsing operation response: %w", err)
	}

	return &operation, nil
}

// List implements the workflow template list operation, returning a single page.
func (c *WorkflowTemplatesClient) List(ctx context.Context, params *strata.QueryParams) (*strata.WorkflowTemplatesList, error) {
	return c.ListWithPath(ctx, "/v1/workflow-templates", params)
}

// ListWithPath lists workflow templates from the given path.
func (c *WorkflowTemplatesClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.WorkflowTemplatesList, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing workflow templates: %w", err)
	}

	var result strata.WorkflowTemplatesList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing workflow templates list response: %w", err)
	}

	return &result, nil
}

// ListAll follows continuation tokens and returns all workflow templates.
func (c *WorkflowTemplatesClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.WorkflowTemplate, error) {
	return strata.FetchAllPages[strata.WorkflowTemplate](ctx, c, "/v1/workflow-templates", params, nil)
}

// Pager fetches the first page of workflow templates and returns a pager
// positioned on it.
func (c *WorkflowTemplatesClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.WorkflowTemplate], error) {
	first, err := c.ListWithPath(ctx, "/v1/workflow-templates", params)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, p *strata.QueryParams, _ map[string]string) (*strata.WorkflowTemplatesList, error) {
		return c.ListWithPath(ctx, "/v1/workflow-templates", p)
	}

	return strata.NewPager(fetch, params, first, nil), nil
}
