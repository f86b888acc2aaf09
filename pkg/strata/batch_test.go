package strata_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/strata-io/strata-client/pkg/strata"
)

// MockClient implements strata.Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetInfo(ctx context.Context) (*strata.Info, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Info), args.Error(1)
}

func (m *MockClient) GetRootInfo(ctx context.Context) (*strata.RootInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.RootInfo), args.Error(1)
}

func (m *MockClient) Clusters() strata.ClustersClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(strata.ClustersClient)
}

func (m *MockClient) WorkflowTemplates() strata.WorkflowTemplatesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(strata.WorkflowTemplatesClient)
}

func (m *MockClient) Jobs() strata.JobsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(strata.JobsClient)
}

func (m *MockClient) Operations() strata.OperationsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(strata.OperationsClient)
}

func (m *MockClient) AutoscalingPolicies() strata.AutoscalingPoliciesClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(strata.AutoscalingPoliciesClient)
}

// MockClustersClient implements strata.ClustersClient for testing.
type MockClustersClient struct {
	mock.Mock
}

func (m *MockClustersClient) Create(ctx context.Context, request *strata.ClusterCreateRequest) (*strata.Operation, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Operation), args.Error(1)
}

func (m *MockClustersClient) Get(ctx context.Context, name string) (*strata.Cluster, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Cluster), args.Error(1)
}

func (m *MockClustersClient) Update(ctx context.Context, name string, request *strata.ClusterUpdateRequest) (*strata.Operation, error) {
	args := m.Called(ctx, name, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Operation), args.Error(1)
}

func (m *MockClustersClient) Delete(ctx context.Context, name string) (*strata.Operation, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Operation), args.Error(1)
}

func (m *MockClustersClient) List(ctx context.Context, params *strata.QueryParams) (*strata.ClustersList, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.ClustersList), args.Error(1)
}

func (m *MockClustersClient) ListAll(ctx context.Context, params *strata.QueryParams) ([]strata.Cluster, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]strata.Cluster), args.Error(1)
}

func (m *MockClustersClient) Pager(ctx context.Context, params *strata.QueryParams) (*strata.Pager[strata.Cluster], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Pager[strata.Cluster]), args.Error(1)
}

func (m *MockClustersClient) Diagnose(ctx context.Context, name string) (*strata.Operation, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*strata.Operation), args.Error(1)
}

func TestBatchExecutor_Execute(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	mockClusters := &MockClustersClient{}
	mockClient.On("Clusters").Return(mockClusters)

	executor := strata.NewBatchExecutor(mockClient, 2)
	ctx := context.Background()

	cluster1 := &strata.Cluster{Name: "analytics-prod", Region: "us-east1"}
	cluster2 := &strata.Cluster{Name: "analytics-staging", Region: "us-east1"}

	mockClusters.On("Get", mock.Anything, "analytics-prod").Return(cluster1, nil)
	mockClusters.On("Get", mock.Anything, "analytics-staging").Return(cluster2, nil)

	operations := []strata.BatchOperation{
		{
			ID:       "op1",
			Type:     "get",
			Resource: "cluster",
			Data:     "analytics-prod",
		},
		{
			ID:       "op2",
			Type:     "get",
			Resource: "cluster",
			Data:     "analytics-staging",
		},
	}

	results, err := executor.Execute(ctx, operations)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	for _, result := range results {
		assert.True(t, result.Success)
		require.NoError(t, result.Error)
		assert.NotNil(t, result.Data)
		assert.Positive(t, result.Duration)
	}

	mockClient.AssertExpectations(t)
	mockClusters.AssertExpectations(t)
}

func TestBatchExecutor_WithCallback(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	mockClusters := &MockClustersClient{}
	mockClient.On("Clusters").Return(mockClusters)

	executor := strata.NewBatchExecutor(mockClient, 1)
	ctx := context.Background()

	cluster := &strata.Cluster{Name: "analytics-prod"}
	mockClusters.On("Get", mock.Anything, "analytics-prod").Return(cluster, nil)

	var (
		callbackCalled bool
		callbackResult *strata.BatchResult
	)

	operation := strata.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "cluster",
		Data:     "analytics-prod",
		Callback: func(result *strata.BatchResult) {
			callbackCalled = true
			callbackResult = result
		},
	}

	_, err := executor.Execute(ctx, []strata.BatchOperation{operation})
	require.NoError(t, err)

	assert.True(t, callbackCalled)
	require.NotNil(t, callbackResult)
	assert.True(t, callbackResult.Success)
	assert.Equal(t, "op1", callbackResult.ID)

	mockClient.AssertExpectations(t)
	mockClusters.AssertExpectations(t)
}

func TestBatchExecutor_WithError(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	mockClusters := &MockClustersClient{}
	mockClient.On("Clusters").Return(mockClusters)

	executor := strata.NewBatchExecutor(mockClient, 1)
	ctx := context.Background()

	mockClusters.On("Get", mock.Anything, "missing").Return(nil, errors.New("cluster not found"))

	operation := strata.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "cluster",
		Data:     "missing",
	}

	results, err := executor.Execute(ctx, []strata.BatchOperation{operation})
	require.NoError(t, err) // Execute itself shouldn't fail
	assert.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "cluster not found")

	mockClient.AssertExpectations(t)
	mockClusters.AssertExpectations(t)
}

func TestBatchExecutor_InvalidDataType(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	mockClusters := &MockClustersClient{}
	mockClient.On("Clusters").Return(mockClusters)

	executor := strata.NewBatchExecutor(mockClient, 1)

	operation := strata.BatchOperation{
		ID:       "op1",
		Type:     "create",
		Resource: "cluster",
		Data:     42, // not a *ClusterCreateRequest
	}

	results, err := executor.Execute(context.Background(), []strata.BatchOperation{operation})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	require.ErrorIs(t, results[0].Error, strata.ErrInvalidDataTypeCluster)
}

func TestBatchBuilder(t *testing.T) {
	t.Parallel()

	builder := strata.NewBatchBuilder()

	createReq := &strata.ClusterCreateRequest{Name: "analytics-prod", Region: "us-east1"}
	updateReq := &strata.ClusterUpdateRequest{
		Config:     &strata.ClusterConfig{WorkerConfig: &strata.InstanceGroupConfig{NumInstances: 10}},
		UpdateMask: []string{"config.worker_config.num_instances"},
	}

	builder.
		AddCreateCluster("create-1", createReq).
		AddUpdateCluster("update-1", "analytics-prod", updateReq).
		AddDeleteCluster("delete-1", "analytics-old").
		AddGetCluster("get-1", "analytics-staging").
		AddSubmitJob("submit-1", &strata.JobSubmitRequest{Job: &strata.Job{Type: "spark"}})

	operations := builder.Build()
	assert.Len(t, operations, 5)

	assert.Equal(t, "create-1", operations[0].ID)
	assert.Equal(t, "create", operations[0].Type)
	assert.Equal(t, "cluster", operations[0].Resource)

	assert.Equal(t, "update-1", operations[1].ID)
	assert.Equal(t, "update", operations[1].Type)

	assert.Equal(t, "delete-1", operations[2].ID)
	assert.Equal(t, "delete", operations[2].Type)

	assert.Equal(t, "get-1", operations[3].ID)
	assert.Equal(t, "get", operations[3].Type)

	assert.Equal(t, "submit-1", operations[4].ID)
	assert.Equal(t, "job", operations[4].Resource)
}

func TestBatchExecutor_UnsupportedResource(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	executor := strata.NewBatchExecutor(mockClient, 1)
	executor.SetTimeout(time.Second)

	operation := strata.BatchOperation{
		ID:       "op1",
		Type:     "get",
		Resource: "unsupported",
		Data:     "test",
	}

	results, err := executor.Execute(context.Background(), []strata.BatchOperation{operation})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Success)
	require.ErrorIs(t, result.Error, strata.ErrUnsupportedResourceType)
}
