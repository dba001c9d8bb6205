// Package table serves the scene configuration to the experiment harness.
//
// A Table is an immutable, validated view over an ir.SceneTable. It is the
// only thing the harness reads: prompts, the choice scale, scenes, the object
// labels of each scene and the color slots they are drawn in.
//
// Construction goes through New, which validates every invariant and takes a
// deep copy. After that a Table never changes, so it can be shared between
// goroutines without locking. Every accessor returns fresh slices.
//
// Default returns the table compiled into the binary. Callers that need a
// different table load one with the CLI loader and pass it in explicitly.
package table
