package assets

import _ "embed"

// Inline beacon script templates, compiled into the binary at build time.
// Placeholders are filled with JSON-encoded values by internal/beacon.

//go:embed pixel.js.tmpl
var PixelJS []byte

//go:embed recorder.js.tmpl
var RecorderJS []byte
