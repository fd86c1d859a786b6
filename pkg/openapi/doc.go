// Package openapi describes the checkout HTTP surface as an OpenAPI 3
// document: the form endpoint with its field constraints and the geo lookup
// endpoint the browser controller can fall back to.
package openapi
