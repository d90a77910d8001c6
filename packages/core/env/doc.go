// Package env resolves the {{...}} placeholders of check files.
//
// Sources, in increasing precedence:
//   - the selected environment from adminspec.yaml
//   - variables declared in the check file
//   - .env files given on the command line
//
// {{$NAME}} reads the process environment and {{fn(args)}} calls a
// builtin function.
package env
