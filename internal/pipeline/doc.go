// Package pipeline runs the two-stage build: the runtime pass, then the
// editor pass referencing the runtime artifact, followed by placement into
// the package tree, a host refresh notification, and optional packaging.
//
// Every stage runs sequentially on the calling goroutine. A Request carries
// all configuration for one run and a Result reports its outcome; nothing
// is retained between runs.
package pipeline
