// Package importer runs T3D imports.
//
// A run reads either the level document of an export (scene mode) or every
// document under the export root (batch modes), then resolves references in
// passes until nothing more can be built:
//
//	materials   build every pending Material from its document
//	instances   drain pending MaterialInstanceConstants, parents first
//	existing    bind meshes, materials and textures already in the store
//	hooks       commit and finalize materials, instances, then actors
//
// Whatever stays pending is listed in the Report and handed to the
// Reporter. Problems local to one document are recorded as diagnostics and
// never stop the run; only a missing level document, a store failure or a
// cancelled context do.
//
// Example:
//
//	imp := importer.New(store, source.NewOSSource(), importer.WithLogger(logger))
//	report, err := imp.Run(ctx, importer.Request{
//	    Mode:        importer.ModeScene,
//	    Source:      "exports/Maps/Forest",
//	    Destination: "Maps/Forest",
//	})
package importer
