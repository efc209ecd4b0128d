// Package instance parses material instance documents.
//
// A material instance overrides texture, scalar and vector parameters of a
// parent material or instance. ParseHeader exposes the parent reference
// before anything is constructed, so an import can build parents first.
package instance
