// Package config loads, validates, and normalizes comicgrabr configuration.
//
// Configuration lives in a TOML file (default ~/.config/comicgrabr/config.toml,
// falling back to ./comicgrabr.toml). Defaults cover everything except
// credentials, which may come from the file or from environment variables.
// Load returns a fully expanded config: paths are absolute and credential
// fallbacks have been applied, so consumers never consult the environment.
package config
