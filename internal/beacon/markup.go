package beacon

import (
	"html"
	"strings"

	"github.com/bildit-platform/aipixel/pkg/config"
)

// hiddenStyle keeps the pixel out of layout without display:none, which
// some crawlers skip when fetching subresources.
const hiddenStyle = "position:absolute;width:1px;height:1px;border:0;overflow:hidden;clip:rect(0 0 0 0)"

func surfaceURL(endpoint string, params map[string]string, mode string) string {
	merged := Merge(map[string]string{}, params)
	merged["mode"] = mode // surface builder wins over caller-supplied mode
	return BuildURL(endpoint, merged)
}

// ImageTag renders the 1x1 hidden image surface with mode=img.
func ImageTag(endpoint string, params map[string]string, alt string) string {
	u := surfaceURL(endpoint, params, "img")
	return `<img src="` + html.EscapeString(u) + `" width="1" height="1" alt="` +
		html.EscapeString(alt) + `" style="` + hiddenStyle + `" loading="eager" decoding="async">`
}

// IframeTag renders the 1x1 hidden iframe surface with mode=iframe.
func IframeTag(endpoint string, params map[string]string, title string) string {
	u := surfaceURL(endpoint, params, "iframe")
	return `<iframe src="` + html.EscapeString(u) + `" width="1" height="1" title="` +
		html.EscapeString(title) + `" style="` + hiddenStyle + `" aria-hidden="true"></iframe>`
}

// NoScriptBlock renders the static fallback image inside a noscript block
// with mode=noscript.
func NoScriptBlock(endpoint string, params map[string]string, alt string) string {
	u := surfaceURL(endpoint, params, "noscript")
	return `<noscript><img src="` + html.EscapeString(u) + `" width="1" height="1" alt="` +
		html.EscapeString(alt) + `" style="` + hiddenStyle + `"></noscript>`
}

// ScriptTag wraps the protocol-A inline script with mode=script base params.
func ScriptTag(endpoint string, params map[string]string, alt string) (string, error) {
	base := Merge(map[string]string{}, params)
	base["mode"] = "script"
	js, err := PixelScript(ScriptOptions{Endpoint: endpoint, Params: base, Alt: alt})
	if err != nil {
		return "", err
	}
	return "<script>" + js + "</script>", nil
}

// RenderSurfaces composes the HTML fragment for the surface set resolved
// from mode, one fragment per active surface in fixed order.
func RenderSurfaces(cfg config.Config, endpoint string, params Params, mode ...string) (string, error) {
	if endpoint == "" {
		endpoint = cfg.PixelEndpoint
	}
	alt := cfg.PixelAlt
	norm := Normalize(params)

	var b strings.Builder
	for _, s := range ResolveSurfaces(mode...).List() {
		switch s {
		case SurfaceImage:
			b.WriteString(ImageTag(endpoint, norm, alt))
		case SurfaceIframe:
			b.WriteString(IframeTag(endpoint, norm, alt))
		case SurfaceNoScript:
			b.WriteString(NoScriptBlock(endpoint, norm, alt))
		case SurfaceScript:
			tag, err := ScriptTag(endpoint, norm, alt)
			if err != nil {
				return "", err
			}
			b.WriteString(tag)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
