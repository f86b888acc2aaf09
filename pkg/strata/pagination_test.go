package strata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/strata-io/strata-client/pkg/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

type TestResource struct {
	ID   string
	Name string
}

// MockPaginationClient serves pages keyed by continuation token; the empty
// token holds the first page. Tokens in failOn return errBackend.
type MockPaginationClient struct {
	pages  map[string]*strata.ListResponse[TestResource]
	failOn map[string]bool

	mu    sync.Mutex
	calls int
}

func (m *MockPaginationClient) ListWithPath(ctx context.Context, path string, params *strata.QueryParams) (*strata.ListResponse[TestResource], error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	token := ""
	if params != nil {
		token = params.PageToken
	}

	if m.failOn[token] {
		return nil, errBackend
	}

	response, ok := m.pages[token]
	if !ok {
		return &strata.ListResponse[TestResource]{Items: []TestResource{}}, nil
	}

	return response, nil
}

// callCount reports how many list calls the backend has served. Safe to call
// while a page stream is running.
func (m *MockPaginationClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// pageFunc adapts the mock to the pager fetch signature.
func (m *MockPaginationClient) pageFunc() strata.PageFunc[TestResource] {
	return func(ctx context.Context, params *strata.QueryParams, _ map[string]string) (*strata.ListResponse[TestResource], error) {
		return m.ListWithPath(ctx, "/test", params)
	}
}

func resources(ids ...string) []TestResource {
	items := make([]TestResource, 0, len(ids))
	for _, id := range ids {
		items = append(items, TestResource{ID: id, Name: "Resource " + id})
	}

	return items
}

// fourPageClient returns a chain of four pages with uneven sizes, including
// an empty middle page.
func fourPageClient() *MockPaginationClient {
	return &MockPaginationClient{
		pages: map[string]*strata.ListResponse[TestResource]{
			"": {
				Items:         resources("1", "2", "3"),
				NextPageToken: "abc",
				TotalSize:     6,
			},
			"abc": {
				Items:         []TestResource{},
				NextPageToken: "def",
				TotalSize:     6,
			},
			"def": {
				Items:         resources("4"),
				NextPageToken: "ghi",
				TotalSize:     6,
			},
			"ghi": {
				Items:     resources("5", "6"),
				TotalSize: 6,
			},
		},
	}
}

func newTestPager(t *testing.T, client *MockPaginationClient) *strata.Pager[TestResource] {
	t.Helper()

	first, err := client.ListWithPath(context.Background(), "/test", nil)
	require.NoError(t, err)

	return strata.NewPager(client.pageFunc(), nil, first, nil)
}

func TestPager_NextPage(t *testing.T) {
	client := fourPageClient()
	pager := newTestPager(t, client)

	assert.Equal(t, 3, pager.Len())
	assert.Equal(t, "abc", pager.NextPageToken())
	assert.Equal(t, 6, pager.TotalSize())
	assert.True(t, pager.HasMorePages())

	page, err := pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, "def", pager.NextPageToken())

	page, err = pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", page.Items[0].ID)

	page, err = pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.False(t, pager.HasMorePages())

	// One call per page, no prefetching
	assert.Equal(t, 4, client.calls)

	_, err = pager.NextPage(context.Background())
	require.ErrorIs(t, err, strata.ErrNoMorePages)
}

func TestPager_SinglePage(t *testing.T) {
	client := &MockPaginationClient{
		pages: map[string]*strata.ListResponse[TestResource]{
			"": {Items: resources("1")},
		},
	}

	pager := newTestPager(t, client)
	assert.False(t, pager.HasMorePages())

	_, err := pager.NextPage(context.Background())
	require.ErrorIs(t, err, strata.ErrNoMorePages)

	// Only the initial fetch hit the backend
	assert.Equal(t, 1, client.calls)
}

func TestPager_FetchErrorIsSticky(t *testing.T) {
	client := fourPageClient()
	client.failOn = map[string]bool{"def": true}

	pager := newTestPager(t, client)

	// First advance succeeds
	_, err := pager.NextPage(context.Background())
	require.NoError(t, err)

	// Second advance fails
	_, err = pager.NextPage(context.Background())
	require.ErrorIs(t, err, errBackend)

	// The pager stays failed and issues no further calls
	callsAfterFailure := client.calls
	_, err = pager.NextPage(context.Background())
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, callsAfterFailure, client.calls)
	assert.False(t, pager.HasMorePages())
}

func TestPager_EachPage(t *testing.T) {
	pager := newTestPager(t, fourPageClient())

	var sizes []int

	err := pager.EachPage(context.Background(), func(page *strata.ListResponse[TestResource]) error {
		sizes = append(sizes, len(page.Items))

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 1, 2}, sizes)
}

func TestPager_EachPageStopsOnCallbackError(t *testing.T) {
	errStop := errors.New("stop")

	client := fourPageClient()
	pager := newTestPager(t, client)

	pages := 0

	err := pager.EachPage(context.Background(), func(*strata.ListResponse[TestResource]) error {
		pages++
		if pages == 2 {
			return errStop
		}

		return nil
	})
	require.ErrorIs(t, err, errStop)
	assert.Equal(t, 2, pages)
}

func TestPager_EachItem(t *testing.T) {
	pager := newTestPager(t, fourPageClient())

	var ids []string

	err := pager.EachItem(context.Background(), func(item TestResource) error {
		ids = append(ids, item.ID)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
}

func TestPager_Stream(t *testing.T) {
	pager := newTestPager(t, fourPageClient())

	var (
		ids   []string
		pages int
	)

	for result := range pager.Stream(context.Background()) {
		require.NoError(t, result.Err)

		pages++

		for _, item := range result.Items {
			ids = append(ids, item.ID)
		}
	}

	assert.Equal(t, 4, pages)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
}

func TestPager_StreamDeliversErrorLast(t *testing.T) {
	client := fourPageClient()
	client.failOn = map[string]bool{"def": true}

	pager := newTestPager(t, client)

	var (
		ids     []string
		lastErr error
	)

	for result := range pager.Stream(context.Background()) {
		if result.Err != nil {
			lastErr = result.Err

			continue
		}

		for _, item := range result.Items {
			ids = append(ids, item.ID)
		}
	}

	// Pages before the failure were delivered intact
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	require.ErrorIs(t, lastErr, errBackend)
}

func TestPager_StreamCancellation(t *testing.T) {
	pager := newTestPager(t, fourPageClient())

	ctx, cancel := context.WithCancel(context.Background())

	stream := pager.Stream(ctx)

	// Consume the first page, then cancel
	first, ok := <-stream
	require.True(t, ok)
	require.NoError(t, first.Err)
	cancel()

	// At most one already-fetched page may still arrive; the stream must
	// close without delivering a partial page.
	for result := range stream {
		require.NoError(t, result.Err)
	}
}

func TestPager_StreamFetchesOnDemand(t *testing.T) {
	client := &MockPaginationClient{
		pages: map[string]*strata.ListResponse[TestResource]{
			"":   {Items: resources("1"), NextPageToken: "t1"},
			"t1": {Items: resources("2"), NextPageToken: "t2"},
			"t2": {Items: resources("3"), NextPageToken: "t3"},
			"t3": {Items: resources("4"), NextPageToken: "t4"},
			"t4": {Items: resources("5"), NextPageToken: "t5"},
			"t5": {Items: resources("6")},
		},
	}

	pager := newTestPager(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := pager.Stream(ctx)

	// Consume only the first page, then stop reading.
	first, ok := <-stream
	require.True(t, ok)
	require.NoError(t, first.Err)

	time.Sleep(100 * time.Millisecond)

	// The initial fetch plus at most one fetch running ahead of the
	// consumer; the rest of the chain must not be pulled speculatively.
	assert.LessOrEqual(t, client.callCount(), 2)
}

func TestPager_HeadersOnEveryFetch(t *testing.T) {
	client := fourPageClient()

	var seen []map[string]string

	fetch := func(ctx context.Context, params *strata.QueryParams, headers map[string]string) (*strata.ListResponse[TestResource], error) {
		seen = append(seen, headers)

		return client.ListWithPath(ctx, "/test", params)
	}

	first, err := client.ListWithPath(context.Background(), "/test", nil)
	require.NoError(t, err)

	headers := map[string]string{"X-Request-Group": "batch-7"}
	pager := strata.NewPager(fetch, nil, first, headers)

	err = pager.EachPage(context.Background(), func(*strata.ListResponse[TestResource]) error {
		return nil
	})
	require.NoError(t, err)

	// Three advances past the first page, each carrying the metadata
	require.Len(t, seen, 3)

	for _, got := range seen {
		assert.Equal(t, headers, got)
	}
}

func TestPaginationIterator_HasNext(t *testing.T) {
	client := &MockPaginationClient{
		pages: map[string]*strata.ListResponse[TestResource]{
			"": {
				Items:         resources("1", "2"),
				NextPageToken: "p2",
				TotalSize:     3,
			},
			"p2": {
				Items:     resources("3"),
				TotalSize: 3,
			},
		},
	}

	ctx := context.Background()
	iterator := strata.NewPaginationIterator[TestResource](ctx, client, "/test", nil)

	// Should have next before any fetch
	assert.True(t, iterator.HasNext())

	item1, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", item1.ID)

	assert.True(t, iterator.HasNext())

	item2, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", item2.ID)

	// Crosses the page boundary
	assert.True(t, iterator.HasNext())

	item3, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "3", item3.ID)

	assert.False(t, iterator.HasNext())

	_, err = iterator.Next()
	require.ErrorIs(t, err, strata.ErrNoMoreItems)
}

func TestPaginationIterator_All(t *testing.T) {
	ctx := context.Background()
	iterator := strata.NewPaginationIterator[TestResource](ctx, fourPageClient(), "/test", nil)

	all, err := iterator.All()
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "6", all[5].ID)
}

func TestPaginationIterator_ForEach(t *testing.T) {
	ctx := context.Background()
	iterator := strata.NewPaginationIterator[TestResource](ctx, fourPageClient(), "/test", nil)

	var ids []string

	err := iterator.ForEach(func(item TestResource) error {
		ids = append(ids, item.ID)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
}

func TestPaginationIterator_FetchError(t *testing.T) {
	client := fourPageClient()
	client.failOn = map[string]bool{"abc": true}

	ctx := context.Background()
	iterator := strata.NewPaginationIterator[TestResource](ctx, client, "/test", nil)

	all, err := iterator.All()
	require.ErrorIs(t, err, errBackend)
	// Items before the failure are still returned
	assert.Len(t, all, 3)
}

func TestFetchAllPages(t *testing.T) {
	client := fourPageClient()

	all, err := strata.FetchAllPages[TestResource](context.Background(), client, "/test", nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "6", all[5].ID)
	assert.Equal(t, 4, client.calls)
}

func TestFetchAllPages_WithMaxPages(t *testing.T) {
	client := fourPageClient()

	all, err := strata.FetchAllPages[TestResource](context.Background(), client, "/test", nil, &strata.PaginationOptions{
		MaxPages: 2,
	})
	require.NoError(t, err)
	// First two pages only: three items plus the empty page
	assert.Len(t, all, 3)
	assert.Equal(t, 2, client.calls)
}

func TestStreamPages(t *testing.T) {
	client := fourPageClient()

	var (
		pages int
		ids   []string
	)

	for result := range strata.StreamPages[TestResource](context.Background(), client, "/test", nil, nil) {
		require.NoError(t, result.Err)

		pages++

		for _, item := range result.Items {
			ids = append(ids, item.ID)
		}
	}

	assert.Equal(t, 4, pages)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
}

func TestStreamPages_Error(t *testing.T) {
	client := fourPageClient()
	client.failOn = map[string]bool{"ghi": true}

	var lastErr error

	pages := 0

	for result := range strata.StreamPages[TestResource](context.Background(), client, "/test", nil, nil) {
		if result.Err != nil {
			lastErr = result.Err

			continue
		}

		pages++
	}

	assert.Equal(t, 3, pages)
	require.ErrorIs(t, lastErr, errBackend)
}
