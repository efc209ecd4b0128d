// Package resolver tracks cross-document references during an import.
//
// T3D documents reference objects that may not exist yet: forward
// references inside one document, objects defined in sibling documents, or
// objects whose document has not been opened. A consumer therefore does not
// look a reference up; it registers an Obligation that fires once the
// object exists.
//
// Basic usage:
//
//	r := resolver.New[*assets.Object]()
//	ref, _ := resolver.ParseReference("StaticMesh'Props.SM_Crate'", "")
//	r.Register(ref, func(mesh *assets.Object) { placement.StaticMesh = mesh })
//	...
//	r.Resolve(ref, mesh) // fires the obligation
//
// Kinds whose objects depend on other objects of the same kind (material
// instances parented on other instances) are constructed with Drain, which
// repeats passes over the candidates until a pass makes no progress.
package resolver
