// Package strata provides types, interfaces, and helpers for working with the
// Strata orchestration API.
//
// # Overview
//
// The strata package defines the domain types (e.g., Cluster, WorkflowTemplate,
// Job, Operation, AutoscalingPolicy) and the interfaces for resource-oriented
// clients (e.g., ClustersClient, JobsClient). A concrete implementation of
// these clients is provided by the strataclient package, which wires
// configuration, transport, authentication, and token endpoint discovery. Most
// consumers should import strataclient to construct a client and then interact
// with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/strata-io/strata-client/pkg/strata"
//	  "github.com/strata-io/strata-client/pkg/strataclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := strataclient.New(&strata.Config{APIEndpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of clusters
//	  clusters, err := cli.Clusters().List(ctx, strata.NewQueryParams().WithPageSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = clusters
//	}
//
// # Queries and pagination
//
// List endpoints return one page of results along with a continuation token;
// an empty token means the listing is complete. Use QueryParams to express
// common list options (page_size, page_token, order_by, filter). The Pager
// type walks the token chain page by page:
//
//	pager, err := cli.Clusters().Pager(ctx, nil)
//	if err != nil { /* handle error */ }
//	for {
//	  for _, c := range pager.Current() {
//	    _ = c
//	  }
//	  if err := pager.NextPage(ctx); err != nil {
//	    break // strata.ErrNoMorePages when the listing is complete
//	  }
//	}
//
// or stream pages through a channel:
//
//	for result := range pager.Stream(ctx) {
//	  if result.Err != nil { /* handle error */ }
//	  _ = result.Items
//	}
//
// Item-level iteration and bulk collection are also available via
// PaginationIterator and FetchAllPages:
//
//	all, err := strata.FetchAllPages(ctx, cli.Clusters(), "/v1/clusters", nil, strata.DefaultPaginationOptions())
//	if err != nil { /* handle error */ }
//	_ = all
//
// # Errors
//
// API errors are represented by APIError and ResponseError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on common
// error cases.
//
// # Operations
//
// Mutating cluster and workflow calls return an Operation rather than the
// final resource. Poll it to completion with cli.Operations().PollUntilDone,
// or inspect it asynchronously via cli.Operations().Get.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, metrics, rate limiting, circuit
// breaking) and a pluggable Cache abstraction with in-memory and NATS KV
// backends. The strataclient package composes these pieces for a sensible
// default client; applications with advanced needs can also use these
// primitives directly.
package strata
