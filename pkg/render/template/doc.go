// Package template defines the seam between renderers and the template engine
// that produces their markup. The pongo subpackage is the engine used by the
// HTML renderer.
package template
