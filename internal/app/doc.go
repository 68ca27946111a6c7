// Package app wires a run together: it merges command-line configuration
// with the optional settings file, builds the renderer and notifier, and
// dispatches to direct text rendering, a bundled demo or a user script.
package app
