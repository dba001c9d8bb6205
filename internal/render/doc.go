// Package render writes a scene table in the formats consumed outside this
// module: the JS constants file imported by the browser harness, and the
// parallel-array legacy layout as JSON or YAML.
package render
