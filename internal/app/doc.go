// Package app contains the core application logic. It wires the loaded
// configuration into a build pipeline and implements the build, package,
// bump and show operations, decoupled from any specific entrypoint like a
// CLI.
package app
