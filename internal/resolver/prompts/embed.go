// Package prompts embeds the resolver prompt templates.
package prompts

import "embed"

//go:embed *.md
var FS embed.FS
