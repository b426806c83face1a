// Package embedded carries the static resources compiled into the binary.
package embedded

import (
	"embed"
)

// FS embeds the output document templates at build time.
//
//go:embed templates/*
var FS embed.FS

// ManifestTemplate is the path of the manifest header template inside FS.
const ManifestTemplate = "templates/manifest.xml.tmpl"
