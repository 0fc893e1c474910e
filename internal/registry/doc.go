// Package registry is a client for the CKAN datastore_search endpoint that
// serves the Latvian Enterprise Register open-data dataset.
//
// One Search call issues one GET filtered by exact entity name and returns the
// decoded result.records array. Failures are returned as *Error values carrying
// an ErrorCategory so callers can decide whether to retry.
package registry
