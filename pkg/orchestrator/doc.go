// Package orchestrator wires the geo snapshot → checkout form → user meta
// prefill → renderer pipeline and the matching submission path, providing
// dependency injection friendly helpers for the HTTP server and the CLI.
package orchestrator
