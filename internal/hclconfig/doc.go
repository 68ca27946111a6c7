// Package hclconfig loads the optional animath.hcl settings file.
//
// The file may hold project, toolchain, output and notify blocks. Attribute
// expressions can refer to the process environment through `env` and to the
// directory containing the file through `config_dir`:
//
//	toolchain {
//	  latex = "${env.TEXBIN}/latex"
//	}
package hclconfig
