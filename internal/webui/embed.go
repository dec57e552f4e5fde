// ABOUTME: Embeds HTML templates and the help document into the binary
// ABOUTME: Provides templateFS and helpFS for loading at startup

package webui

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed docs/help.md
var helpFS embed.FS
