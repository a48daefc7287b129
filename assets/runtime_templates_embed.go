// Where: cli/assets/runtime_templates_embed.go
// What: Embed project scaffold templates for the init command.
// Why: Ship hello-world projects inside the binary.
package assets

import "embed"

// ScaffoldFS holds scaffold/common plus one directory per runtime family.
//
//go:embed scaffold
var ScaffoldFS embed.FS
