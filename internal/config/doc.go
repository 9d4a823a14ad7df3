// Package config loads and merges show-changed-tests configuration from
// multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SCT_PREFIX, SCT_LABEL, SCT_EXTENSION, etc.)
//  3. Repository file (.show-changed-tests.yaml in the repository root)
//  4. User file ($XDG_CONFIG_HOME/show-changed-tests/config.yaml)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the user file, and
// [SetField] to update a single key.
package config
