// Package services contains the business logic between the normalizer and
// the HTTP transport: the dataset cache, category and chart queries, and
// the health check.
package services
