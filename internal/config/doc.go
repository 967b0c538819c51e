// Package config defines the format-agnostic model of a project's persisted
// build configuration, along with the interfaces for loading it and for
// writing the version counter back.
//
// The Model is the single source the app package builds a pipeline and a
// build request from. Concrete implementations of the interfaces, such as
// for HCL, are provided in separate packages.
package config
