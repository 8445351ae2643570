// Package http contains the chi handlers for the dataset API. Handlers
// depend on narrow service interfaces and render errors as RFC 7807
// problem details.
package http
