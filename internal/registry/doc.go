// Package registry loads the scene and deck catalog from a directory of
// YAML, JSON or TOML files and optionally keeps it current with fsnotify.
package registry
