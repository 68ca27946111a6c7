// Package render turns a LaTeX body into a PNG image.
//
// A render writes <name>.tex into a workspace directory, compiles it with a
// LaTeX compiler into <name>.dvi and rasterizes that with a DVI-to-PNG
// converter into <name>.png. Every step's exit status is checked, so a
// caller always learns whether the image on disk belongs to this render.
//
// The external tools are launched through the Executor interface. The
// default ExecExecutor uses os/exec; tests substitute a fake that writes the
// artifacts itself.
package render
