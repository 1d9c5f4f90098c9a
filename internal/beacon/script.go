package beacon

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/bildit-platform/aipixel/internal/assets"
)

// ScriptOptions parameterizes the protocol-A inline script.
type ScriptOptions struct {
	Endpoint string
	Params   map[string]string
	Alt      string
}

// RecorderOptions parameterizes the mouse/click/scroll recorder script.
type RecorderOptions struct {
	Endpoint     string
	Params       map[string]string
	DurationMS   int
	ThrottleMS   int
	MaxMovements int
}

var (
	pixelTmpl    = template.Must(template.New("pixel.js").Parse(string(assets.PixelJS)))
	recorderTmpl = template.Must(template.New("recorder.js").Parse(string(assets.RecorderJS)))
)

// jsValue encodes v as a JSON literal safe to splice into the script body.
func jsValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	// "</script>" inside a string literal would terminate the inline block.
	return strings.ReplaceAll(string(b), "</", `<\/`), nil
}

// PixelScript emits the self-contained bootstrap/render/mouse beacon
// script. The payload has no external dependencies and swallows its own
// runtime errors so it can never break a host page.
func PixelScript(opts ScriptOptions) (string, error) {
	if opts.Endpoint == "" {
		return "", fmt.Errorf("pixel script: endpoint required")
	}
	params := opts.Params
	if params == nil {
		params = map[string]string{}
	}
	endpoint, err := jsValue(opts.Endpoint)
	if err != nil {
		return "", err
	}
	paramsJSON, err := jsValue(params)
	if err != nil {
		return "", err
	}
	alt, err := jsValue(opts.Alt)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	err = pixelTmpl.Execute(&b, struct {
		Endpoint, Params, Alt string
	}{endpoint, paramsJSON, alt})
	if err != nil {
		return "", fmt.Errorf("pixel script: %w", err)
	}
	return b.String(), nil
}

// RecorderScript emits the multi-event recorder script. Duration,
// throttle, and sample cap fall back to safe values when unset so a
// zero-valued options struct still produces a working payload.
func RecorderScript(opts RecorderOptions) (string, error) {
	if opts.Endpoint == "" {
		return "", fmt.Errorf("recorder script: endpoint required")
	}
	if opts.DurationMS <= 0 {
		opts.DurationMS = 10000
	}
	if opts.ThrottleMS <= 0 {
		opts.ThrottleMS = 1000
	}
	if opts.MaxMovements <= 0 {
		opts.MaxMovements = 100
	}
	params := opts.Params
	if params == nil {
		params = map[string]string{}
	}
	endpoint, err := jsValue(opts.Endpoint)
	if err != nil {
		return "", err
	}
	paramsJSON, err := jsValue(params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	err = recorderTmpl.Execute(&b, struct {
		Endpoint, Params                     string
		DurationMS, ThrottleMS, MaxMovements int
	}{endpoint, paramsJSON, opts.DurationMS, opts.ThrottleMS, opts.MaxMovements})
	if err != nil {
		return "", fmt.Errorf("recorder script: %w", err)
	}
	return b.String(), nil
}
