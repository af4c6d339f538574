// Package types defines the shared domain types for the matcher service:
// users and their skill vectors, match results, and the discovery feed.
package types
