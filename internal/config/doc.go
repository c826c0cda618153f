// Package config holds the application configuration: defaults, CLI
// flag targets, validation, and the optional .whiteout YAML file with
// named anonymization profiles.
//
// Configuration flows by dependency injection: the CLI builds one
// Config, validates it once, and passes it down. Nothing in this
// package is global state.
package config
