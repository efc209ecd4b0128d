// Package material parses material documents into expression graphs.
//
// Legacy expression classes are renamed to their current equivalents, and
// classes with no equivalent are dropped with an unsupported diagnostic.
// Expression inputs are wired through a resolver local to the material;
// textures go through the import-wide resolver.
//
// A flip book sample is expanded into a texture sample driven by a call to
// the engine FlipBook function:
//
//	Rows ─┐
//	Cols ─┼─ FlipBook(UVs) ── output 2 ──> TextureSample.Coordinates
//	UVs  ─┘
package material
