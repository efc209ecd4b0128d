// Package source provides the file collaborator of the importer.
//
// A Source reads whole documents and lists documents by extension. OSSource
// reads the local file system; GitSource keeps a local clone of a repository
// of exports up to date with go-git and reads from it. Watcher re-runs an
// import when documents change on disk.
package source
