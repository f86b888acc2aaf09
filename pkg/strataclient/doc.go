// Package strataclient provides the primary entry point for constructing a
// Strata API client that implements the strata.Client interface.
//
// It layers configuration, HTTP transport, authentication, and token endpoint
// discovery on top of the resource interfaces and types defined in the strata
// package. Most applications should import strataclient to build a client, then
// use the returned strata.Client to access resource-specific clients, for
// example Clusters(), WorkflowTemplates(), Jobs(), etc.
//
// Quick start
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
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := strataclient.New(ctx, &strata.Config{APIEndpoint: "https://api.strata.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = strataclient.New(ctx, &strata.Config{
//	    APIEndpoint: "https://api.strata.example.com",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with username/password or client credentials. When credentials are
//	  // provided and no token URL is set, strataclient discovers the token
//	  // endpoint from the API root (/) and sets TokenURL automatically.
//	  cli, err = strataclient.New(ctx, &strata.Config{
//	    APIEndpoint:  "https://api.strata.example.com",
//	    Username:     "user",
//	    Password:     "pass",
//	    // alternatively:
//	    // ClientID:     "client-id",
//	    // ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the strata.Client interface
//	  clusters, err := cli.Clusters().List(ctx, strata.NewQueryParams().WithPageSize(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = clusters
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated
// by the environment variable STRATA_DEV_MODE to avoid accidental insecure
// usage in production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithClientCredentials, and NewWithPassword that wrap New
// with the appropriate configuration.
package strataclient
