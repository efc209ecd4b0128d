// Package scene parses level documents.
//
// ParseLevel reads the PersistentLevel object and builds one product per
// supported actor: static mesh placements, point and spot lights, CSG
// brushes and sound cues. Actors of other classes are skipped.
//
// Static mesh references are resolved against existing store objects;
// polygon materials are registered as Material references and built by the
// material pass of the import.
package scene
