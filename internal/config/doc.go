// Package config loads and validates application configuration.
//
// Configuration is resolved in three layers: an optional config.yaml file,
// then REFINE_-prefixed environment variables which override the file, then
// built-in defaults for anything still unset. Load returns a fully validated
// Config; invalid values fail fast rather than being silently corrected,
// except for the logging format and output which are coerced to supported
// values.
package config
