// Package driver holds the scaffolding shared by the block drivers.
//
// A driver consumes one object block from a t3d.Cursor. It reads the
// header (ReadHeader), walks the body applying known properties through a
// PropertyTable, dispatches nested blocks to sub-drivers and skips the ones
// it does not know. References are registered on the run's resolver through
// Env.Require; the obligations mutate the driver's Product, which the
// importer commits to the store once every pass has run.
//
// The concrete drivers live in the scene, material and instance
// subpackages.
package driver
