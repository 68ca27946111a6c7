// Package cli turns command-line arguments into an app.Config. It accepts
// flags before and after the positional text, resolves the optional value of
// --demo and reports usage problems as ExitError values carrying code 2.
package cli
