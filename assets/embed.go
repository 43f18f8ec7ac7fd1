// Package assets embeds the compiled viewer frontend.
// Run cmd/minify to rebuild index.html from the template sources.
package assets

import _ "embed"

//go:embed index.html
var Index []byte
