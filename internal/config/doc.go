// Package config loads application configuration from environment
// variables (SMB_ prefix) layered over an optional config.yaml file, and
// resolves the dataset and export paths the rest of the application uses.
package config
