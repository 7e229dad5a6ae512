// Package assets embeds the browser client.
package assets

import _ "embed"

// Index is the bundled page produced by cmd/minify.
//
//go:embed index.html
var Index []byte

//go:embed favicon.ico
var Favicon []byte
