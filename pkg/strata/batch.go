package strata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedResourceType  = errors.New("unsupported resource type")
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrInvalidDataTypeCluster   = errors.New("invalid data type for cluster operation")
	ErrInvalidDataTypeTemplate  = errors.New("invalid data type for workflow template operation")
	ErrInvalidDataTypeJob       = errors.New("invalid data type for job operation")
	ErrInvalidDataTypePolicy    = errors.New("invalid data type for autoscaling policy operation")
)

const defaultBatchConcurrency = 5

// UpdateDataWrapper wraps update data with the resource identifier for
// consistent handling.
type UpdateDataWrapper[T any] struct {
	ID      string
	Request *T
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     string // "create", "update", "delete", "get"
	Resource string // "cluster", "template", "job", "policy"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor executes batch operations against the API with bounded
// concurrency.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     time.Minute,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are returned in operation
// order regardless of completion order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// handleCrudOperation dispatches a batch operation to the matching verb.
func handleCrudOperation(
	operation BatchOperation,
	createFunc func() (interface{}, error),
	updateFunc func() (interface{}, error),
	deleteFunc func() (interface{}, error),
	getFunc func() (interface{}, error),
) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "create":
		data, err := createFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "update":
		data, err := updateFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "delete":
		data, err := deleteFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "get":
		data, err := getFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	switch operation.Resource {
	case "cluster":
		return b.executeClusterOperation(ctx, operation)
	case "template":
		return b.executeTemplateOperation(ctx, operation)
	case "job":
		return b.executeJobOperation(ctx, operation)
	case "policy":
		return b.executePolicyOperation(ctx, operation)
	default:
		return &BatchResult{
			ID:    operation.ID,
			Error: fmt.Errorf("%w: %s", ErrUnsupportedResourceType, operation.Resource),
		}
	}
}

func (b *BatchExecutor) executeClusterOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	clusters := b.client.Clusters()

	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ClusterCreateRequest); ok {
				return clusters.Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeCluster)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[ClusterUpdateRequest]); ok {
				return clusters.Update(ctx, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeCluster)
		},
		func() (interface{}, error) {
			if name, ok := operation.Data.(string); ok {
				return clusters.Delete(ctx, name)
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeCluster)
		},
		func() (interface{}, error) {
			if name, ok := operation.Data.(string); ok {
				return clusters.Get(ctx, name)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeCluster)
		},
	)
}

func (b *BatchExecutor) executeTemplateOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	templates := b.client.WorkflowTemplates()

	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*WorkflowTemplateCreateRequest); ok {
				return templates.Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeTemplate)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[WorkflowTemplateUpdateRequest]); ok {
				return templates.Update(ctx, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeTemplate)
		},
		func() (interface{}, error) {
			if id, ok := operation.Data.(string); ok {
				err := templates.Delete(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("failed to delete workflow template: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeTemplate)
		},
		func() (interface{}, error) {
			if id, ok := operation.Data.(string); ok {
				return templates.Get(ctx, id)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeTemplate)
		},
	)
}

func (b *BatchExecutor) executeJobOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	jobs := b.client.Jobs()

	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*JobSubmitRequest); ok {
				return jobs.Submit(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeJob)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[JobUpdateRequest]); ok {
				return jobs.Update(ctx, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeJob)
		},
		func() (interface{}, error) {
			if jobID, ok := operation.Data.(string); ok {
				err := jobs.Delete(ctx, jobID)
				if err != nil {
					return nil, fmt.Errorf("failed to delete job: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeJob)
		},
		func() (interface{}, error) {
			if jobID, ok := operation.Data.(string); ok {
				return jobs.Get(ctx, jobID)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeJob)
		},
	)
}

func (b *BatchExecutor) executePolicyOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	policies := b.client.AutoscalingPolicies()

	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*AutoscalingPolicyCreateRequest); ok {
				return policies.Create(ctx, req)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypePolicy)
		},
		func() (interface{}, error) {
			if data, ok := operation.Data.(*UpdateDataWrapper[AutoscalingPolicyUpdateRequest]); ok {
				return policies.Update(ctx, data.ID, data.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypePolicy)
		},
		func() (interface{}, error) {
			if id, ok := operation.Data.(string); ok {
				err := policies.Delete(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("failed to delete autoscaling policy: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypePolicy)
		},
		func() (interface{}, error) {
			if id, ok := operation.Data.(string); ok {
				return policies.Get(ctx, id)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypePolicy)
		},
	)
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateCluster adds a cluster creation operation.
func (b *BatchBuilder) AddCreateCluster(id string, request *ClusterCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "cluster",
		Data:     request,
	})

	return b
}

// AddUpdateCluster adds a cluster update operation.
func (b *BatchBuilder) AddUpdateCluster(id, name string, request *ClusterUpdateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "update",
		Resource: "cluster",
		Data: &UpdateDataWrapper[ClusterUpdateRequest]{
			ID:      name,
			Request: request,
		},
	})

	return b
}

// AddDeleteCluster adds a cluster deletion operation.
func (b *BatchBuilder) AddDeleteCluster(id, name string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "cluster",
		Data:     name,
	})

	return b
}

// AddGetCluster adds a cluster get operation.
func (b *BatchBuilder) AddGetCluster(id, name string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "cluster",
		Data:     name,
	})

	return b
}

// AddSubmitJob adds a job submission operation.
func (b *BatchBuilder) AddSubmitJob(id string, request *JobSubmitRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "job",
		Data:     request,
	})

	return b
}

// AddDeleteJob adds a job deletion operation.
func (b *BatchBuilder) AddDeleteJob(id, jobID string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "job",
		Data:     jobID,
	})

	return b
}

// AddCreateTemplate adds a workflow template creation operation.
func (b *BatchBuilder) AddCreateTemplate(id string, request *WorkflowTemplateCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "template",
		Data:     request,
	})

	return b
}

// AddCreatePolicy adds an autoscaling policy creation operation.
func (b *BatchBuilder) AddCreatePolicy(id string, request *AutoscalingPolicyCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "policy",
		Data:     request,
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}
