// Package template defines the template engine seam used by HTML renderers.
// The gotemplate subpackage provides the pongo2 backed implementation.
package template
