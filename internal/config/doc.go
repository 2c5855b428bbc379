// Package config handles YAML configuration loading with environment
// variable overrides.
//
// Files support ${VAR} interpolation; after parsing, environment variables
// override individual fields (PORT and FRONTEND_URL keep their legacy
// names). Missing values fall back to defaults.
package config
