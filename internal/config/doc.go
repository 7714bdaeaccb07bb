// Package config holds the runtime settings for keybridge.
//
// Settings live in a nested map addressed by dotted keys such as
// "keyboard.autoCommitConfidence". A Config starts on built-in defaults;
// Load merges an optional TOML or YAML file over them, and Watch keeps the
// file merged as it changes on disk. Section accessors like Keyboard and
// Editor return typed snapshots for the packages that consume them.
//
// A file that fails to parse or validate is rejected wholesale and the
// previous settings stay in effect.
package config
