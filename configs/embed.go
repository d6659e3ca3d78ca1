// Package configs embeds the commented configuration template written by
// `versio config init`.
//
// The same template serves the user file
// ($XDG_CONFIG_HOME/versio/config.yaml) and a project .versio.yaml; every
// active key in it carries the built-in default, so writing it changes no
// behaviour until a value is edited.
package configs

import _ "embed"

// ConfigTemplate is the annotated versio configuration.
//
//go:embed versio.example.yaml
var ConfigTemplate string
