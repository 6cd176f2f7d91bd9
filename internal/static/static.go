package static

import _ "embed"

// HelpMd contains the embedded help.md API usage notes.
//
//go:embed help.md
var HelpMd string
