// Package resource provides an HTTP client for a JSON REST collection.
//
// # Overview
//
// The client speaks the json-server dialect used by jsonplaceholder and
// similar backends. One Client addresses one collection URL (the "base"):
//
//	GET    {base}?_page={n}&_limit={size}   page of records + x-total-count
//	GET    {base}/{id}                      single record
//	POST   {base}                           create, returns the new record
//	PUT    {base}/{id}                      update, returns the canonical record
//	DELETE {base}/{id}                      delete, empty body
//
// # Files
//
//   - client.go: Backend interface, Client, request descriptor and transport
//   - types.go: Record, Draft and ListPage
//   - errors.go: APIError and the cancelled/network error classes
//
// # Errors
//
// Every failure is returned, never retried. Classify separates requests
// aborted by their own context (ErrorClassCancelled) from everything else
// (ErrorClassNetwork), including non-2xx answers, which surface as
// *APIError so callers can still inspect the status code.
//
// # Usage
//
//	client, err := resource.NewClient(cfg.APIURL, resource.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	page, err := client.List(ctx, paging.First(5))
//
// Requests wait indefinitely unless WithTimeout is given.
package resource
