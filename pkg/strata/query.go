package strata

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents common query parameters for list requests.
//
// PageToken carries the continuation token returned by a previous page; the
// pagination helpers thread it automatically, so most callers only set
// PageSize and filters.
type QueryParams struct {
	// PageSize is the maximum number of items to return per page.
	PageSize int
	// PageToken is the continuation token from a prior response.
	PageToken string
	// OrderBy sorts results by the given field (prefix with "-" for descending).
	OrderBy string
	// Filter is a server-side filter expression (e.g. "status = RUNNING").
	Filter string
	// LabelSelector filters by resource labels (e.g. "env=prod,team=data").
	LabelSelector string
	// Fields selects per-resource-type fields to include in responses.
	Fields map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Fields: make(map[string][]string),
	}
}

// Clone returns a copy of the params. The pagination helpers clone before
// overriding PageToken so the caller's params are never mutated.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := &QueryParams{
		PageSize:      q.PageSize,
		PageToken:     q.PageToken,
		OrderBy:       q.OrderBy,
		Filter:        q.Filter,
		LabelSelector: q.LabelSelector,
		Fields:        make(map[string][]string, len(q.Fields)),
	}

	for key, values := range q.Fields {
		clone.Fields[key] = append([]string(nil), values...)
	}

	return clone
}

// WithPageSize sets the page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithPageToken sets the continuation token.
func (q *QueryParams) WithPageToken(token string) *QueryParams {
	q.PageToken = token

	return q
}

// WithOrderBy sets the sort order.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithFilter sets the filter expression.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithLabelSelector sets the label selector.
func (q *QueryParams) WithLabelSelector(selector string) *QueryParams {
	q.LabelSelector = selector

	return q
}

// WithFields replaces the field selection for a resource type.
func (q *QueryParams) WithFields(resourceType string, fields ...string) *QueryParams {
	if q.Fields == nil {
		q.Fields = make(map[string][]string)
	}

	q.Fields[resourceType] = fields

	return q
}

// ToValues converts the params to URL query values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}

	if q.PageToken != "" {
		values.Set("page_token", q.PageToken)
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}

	if q.LabelSelector != "" {
		values.Set("label_selector", q.LabelSelector)
	}

	for resourceType, fields := range q.Fields {
		if len(fields) > 0 {
			values.Set("fields["+resourceType+"]", strings.Join(fields, ","))
		}
	}

	return values
}
