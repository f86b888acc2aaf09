package strata

import (
	"context"
	"errors"

	"github.com/strata-io/strata-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoMorePages = errors.New("no more pages")
)

// PageFunc issues a single list call and returns one page of results. The
// headers are static per-call metadata attached to every fetch.
type PageFunc[T any] func(ctx context.Context, params *QueryParams, headers map[string]string) (*ListResponse[T], error)

// PaginationClient is the minimal surface the pagination helpers need from a
// resource client: the ability to list one page at a given path.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PageResult carries one page delivered by a page stream, or the error that
// ended it.
type PageResult[T any] struct {
	Items    []T
	Response *ListResponse[T]
	Err      error
}

// PaginationOptions tunes the bulk-fetch helpers.
type PaginationOptions struct {
	// PageSize overrides the page size on each request.
	PageSize int
	// MaxPages caps the number of pages fetched (0 = unlimited).
	MaxPages int
}

// DefaultPaginationOptions returns sensible defaults for bulk fetching.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.LargePageSize,
		MaxPages: constants.MaxPages,
	}
}

// Pager walks a chain of continuation tokens, presenting an arbitrarily long
// sequence of paged responses as one logical cursor.
//
// A Pager is created with the first page already fetched; advancing it issues
// one network call per page, strictly in token order. Only the current
// response is retained. A Pager holds a single cursor and is not safe for
// concurrent use.
type Pager[T any] struct {
	fetch   PageFunc[T]
	params  *QueryParams
	headers map[string]string
	current *ListResponse[T]
	err     error
}

// NewPager creates a pager positioned on an already-fetched first response.
//
// fetch is the call that produced the response; params is the originating
// request (copied, never mutated); headers are attached to every subsequent
// fetch.
func NewPager[T any](fetch PageFunc[T], params *QueryParams, first *ListResponse[T], headers map[string]string) *Pager[T] {
	return &Pager[T]{
		fetch:   fetch,
		params:  params.Clone(),
		headers: headers,
		current: first,
	}
}

// Current returns the page the pager currently holds. It is replaced on every
// successful advance.
func (p *Pager[T]) Current() *ListResponse[T] {
	return p.current
}

// NextPageToken returns the continuation token of the current page.
func (p *Pager[T]) NextPageToken() string {
	if p.current == nil {
		return ""
	}

	return p.current.NextPageToken
}

// TotalSize returns the server-reported total from the current page.
func (p *Pager[T]) TotalSize() int {
	if p.current == nil {
		return 0
	}

	return p.current.TotalSize
}

// Len returns the number of items on the current page.
func (p *Pager[T]) Len() int {
	if p.current == nil {
		return 0
	}

	return len(p.current.Items)
}

// HasMorePages reports whether the current page carries a continuation token.
func (p *Pager[T]) HasMorePages() bool {
	return p.err == nil && p.NextPageToken() != ""
}

// NextPage fetches the page indicated by the current continuation token and
// replaces the held page with it.
//
// A fetch failure is returned unmodified and the pager stops advancing; pages
// delivered before the failure remain valid. Calling NextPage with an empty
// token returns ErrNoMorePages.
func (p *Pager[T]) NextPage(ctx context.Context) (*ListResponse[T], error) {
	if p.err != nil {
		return nil, p.err
	}

	token := p.NextPageToken()
	if token == "" {
		return nil, ErrNoMorePages
	}

	params := p.params.Clone()
	params.PageToken = token

	resp, err := p.fetch(ctx, params, p.headers)
	if err != nil {
		p.err = err

		return nil, err
	}

	p.current = resp

	return resp, nil
}

// EachPage calls fn for the current page and then for every subsequent page,
// fetching lazily until the continuation token is empty. Errors from fn or
// from a fetch stop iteration and are returned.
func (p *Pager[T]) EachPage(ctx context.Context, fn func(*ListResponse[T]) error) error {
	if p.current == nil {
		return nil
	}

	if err := fn(p.current); err != nil {
		return err
	}

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}

		if err := fn(page); err != nil {
			return err
		}
	}

	return nil
}

// EachItem flattens the page chain into a single item sequence, preserving
// page order and within-page order.
func (p *Pager[T]) EachItem(ctx context.Context, fn func(T) error) error {
	return p.EachPage(ctx, func(page *ListResponse[T]) error {
		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}

		return nil
	})
}

// Stream delivers the page chain on a channel, fetching each page strictly
// after the previous one has been received. The channel is unbuffered, so a
// consumer that stops reading stops the fetching too; at most one fetch runs
// ahead of consumption. Cancelling ctx stops the stream; no partial page is
// ever delivered. A fetch error arrives as the final result.
//
// The channel is closed when the chain ends, errors, or is cancelled. The
// pager must not be used again after Stream has been called.
func (p *Pager[T]) Stream(ctx context.Context) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		if p.current == nil {
			return
		}

		page := p.current
		for {
			select {
			case results <- PageResult[T]{Items: page.Items, Response: page}:
			case <-ctx.Done():
				return
			}

			if !p.HasMorePages() {
				return
			}

			next, err := p.NextPage(ctx)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			page = next
		}
	}()

	return results
}

// PaginationIterator provides item-at-a-time iteration over a paginated list
// endpoint, fetching pages on demand.
type PaginationIterator[T any] struct {
	ctx     context.Context
	client  PaginationClient[T]
	path    string
	params  *QueryParams
	buffer  []T
	index   int
	token   string
	started bool
	done    bool
	err     error
}

// NewPaginationIterator creates an iterator over the given list path. The
// first page is fetched lazily on the first HasNext or Next call.
func NewPaginationIterator[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:    ctx,
		client: client,
		path:   path,
		params: params.Clone(),
	}
}

// advance loads pages until the buffer holds an unconsumed item or the token
// chain is exhausted.
func (it *PaginationIterator[T]) advance() {
	for it.err == nil && !it.done && it.index >= len(it.buffer) {
		if it.started && it.token == "" {
			it.done = true

			return
		}

		params := it.params.Clone()
		params.PageToken = it.token

		resp, err := it.client.ListWithPath(it.ctx, it.path, params)
		if err != nil {
			it.err = err

			return
		}

		it.started = true
		it.buffer = resp.Items
		it.index = 0
		it.token = resp.NextPageToken
	}
}

// HasNext reports whether another item is available, fetching the next page
// if the current one is exhausted. A fetch error is surfaced by the next call
// to Next.
func (it *PaginationIterator[T]) HasNext() bool {
	it.advance()

	return it.err != nil || it.index < len(it.buffer)
}

// Next returns the next item in the flattened sequence.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	it.advance()

	if it.err != nil {
		return zero, it.err
	}

	if it.index >= len(it.buffer) {
		return zero, ErrNoMoreItems
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// All consumes the iterator and returns every remaining item.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return all, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach applies fn to every remaining item, stopping on the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

// FetchAllPages collects every item from a paginated endpoint by following
// continuation tokens until exhaustion or the MaxPages cap.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	query := params.Clone()
	if options.PageSize > 0 {
		query.PageSize = options.PageSize
	}

	var (
		all   []T
		pages int
	)

	for {
		resp, err := client.ListWithPath(ctx, path, query)
		if err != nil {
			return all, err
		}

		all = append(all, resp.Items...)
		pages++

		if resp.NextPageToken == "" {
			return all, nil
		}

		if options.MaxPages > 0 && pages >= options.MaxPages {
			return all, nil
		}

		query = query.Clone()
		query.PageToken = resp.NextPageToken
	}
}

// StreamPages fetches pages sequentially and delivers them on a channel,
// allowing the consumer to process one page while the next is requested.
func StreamPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	query := params.Clone()
	if options.PageSize > 0 {
		query.PageSize = options.PageSize
	}

	results := make(chan PageResult[T], constants.SmallBufferSize)

	go func() {
		defer close(results)

		pages := 0

		for {
			resp, err := client.ListWithPath(ctx, path, query)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: resp.Items, Response: resp}:
			case <-ctx.Done():
				return
			}

			pages++

			if resp.NextPageToken == "" {
				return
			}

			if options.MaxPages > 0 && pages >= options.MaxPages {
				return
			}

			query = query.Clone()
			query.PageToken = resp.NextPageToken
		}
	}()

	return results
}
