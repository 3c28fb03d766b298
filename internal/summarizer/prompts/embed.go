// Package prompts embeds the summarizer prompt templates.
package prompts

import "embed"

//go:embed *.md
var FS embed.FS
