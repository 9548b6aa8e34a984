// Package publish uploads a completed conversion's packaged result to an
// object store. Publishing is optional and best-effort: a task that fails
// to publish still completes locally.
//
// S3API is a narrow interface over the subset of *s3.Client used, so
// tests can substitute a fake without a network-backed S3 mock.
package publish
