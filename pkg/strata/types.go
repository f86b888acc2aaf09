package strata

import (
	"time"
)

// Resource represents the base structure for all Strata API resources.
type Resource struct {
	UUID       string            `json:"uuid"              yaml:"uuid"`
	CreateTime time.Time         `json:"create_time"       yaml:"create_time"`
	UpdateTime time.Time         `json:"update_time"       yaml:"update_time"`
	Labels     map[string]string `json:"labels,omitempty"  yaml:"labels,omitempty"`
}

// ListResponse represents one page of a paginated list response.
//
// NextPageToken is the continuation token for the following page; an empty
// token means there are no further pages. TotalSize, when the server reports
// it, is the total number of matching resources across all pages.
type ListResponse[T any] struct {
	Items         []T    `json:"items"                     yaml:"items"`
	NextPageToken string `json:"next_page_token,omitempty" yaml:"next_page_token,omitempty"`
	TotalSize     int    `json:"total_size,omitempty"      yaml:"total_size,omitempty"`
}

// ClustersList represents a paginated list of Cluster resources.
type ClustersList = ListResponse[Cluster]

// WorkflowTemplatesList represents a paginated list of WorkflowTemplate resources.
type WorkflowTemplatesList = ListResponse[WorkflowTemplate]

// JobsList represents a paginated list of Job resources.
type JobsList = ListResponse[Job]

// OperationsList represents a paginated list of Operation resources.
type OperationsList = ListResponse[Operation]

// AutoscalingPoliciesList represents a paginated list of AutoscalingPolicy resources.
type AutoscalingPoliciesList = ListResponse[AutoscalingPolicy]
