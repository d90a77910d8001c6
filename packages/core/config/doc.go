// Package config loads adminspec.yaml, the project-wide settings shared by
// every check file: loader options, run options and named environments.
//
// Without a config file DefaultConfig is used. Command line flags are
// merged on top with Merge.
package config
