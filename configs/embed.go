// Package configs embeds the configuration template written by
// `appshelf config init`.
//
// Precedence (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config (~/.config/appshelf/config.yaml)
//  3. Environment variables (APPSHELF_*)
package configs

import _ "embed"

// UserConfigTemplate is the commented user configuration. Its values match
// config.NewConfig.
//
//go:embed config.example.yaml
var UserConfigTemplate string
