// Package config provides configuration types and loading for the
// gateway.
//
// Configuration is a single YAML file with ${VAR} and ${VAR:-default}
// environment substitution ($$ escapes a literal dollar). Every route
// path is checked with the router's own pattern parser during
// validation, so a file that validates will also register.
//
//	cfg, err := config.LoadConfig("gateway.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// Watcher reloads the file on change, debouncing bursts of writes, and
// hands every valid configuration to a callback.
package config
