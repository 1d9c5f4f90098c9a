package beacon

// Surface is one concrete delivery mechanism for the pixel.
type Surface string

const (
	SurfaceImage    Surface = "image"
	SurfaceIframe   Surface = "iframe"
	SurfaceNoScript Surface = "noscript"
	SurfaceScript   Surface = "script"
)

// SurfaceSet is the resolved set of surfaces to render.
type SurfaceSet map[Surface]bool

// Has reports whether s is in the set.
func (ss SurfaceSet) Has(s Surface) bool { return ss[s] }

// List returns the set in fixed render order: image, iframe, noscript, script.
func (ss SurfaceSet) List() []Surface {
	all := []Surface{SurfaceImage, SurfaceIframe, SurfaceNoScript, SurfaceScript}
	out := make([]Surface, 0, len(ss))
	for _, s := range all {
		if ss[s] {
			out = append(out, s)
		}
	}
	return out
}

func fullSet() SurfaceSet {
	return SurfaceSet{SurfaceImage: true, SurfaceIframe: true, SurfaceNoScript: true, SurfaceScript: true}
}

// expandToken maps one mode token to its surfaces. Unknown tokens expand
// to nothing; callers stay forward-compatible with new mode names.
func expandToken(tok string) []Surface {
	switch tok {
	case "auto", "server":
		return []Surface{SurfaceImage, SurfaceIframe, SurfaceNoScript, SurfaceScript}
	case "image", "img":
		return []Surface{SurfaceImage}
	case "iframe":
		return []Surface{SurfaceIframe}
	case "noscript":
		return []Surface{SurfaceNoScript}
	case "script":
		return []Surface{SurfaceScript}
	}
	return nil
}

// ResolveSurfaces maps a mode selector (no tokens, one token, or a list)
// to the surfaces to activate. No tokens, "auto", "server", and selectors
// that resolve to nothing all yield the full set.
func ResolveSurfaces(mode ...string) SurfaceSet {
	set := SurfaceSet{}
	for _, tok := range mode {
		for _, s := range expandToken(tok) {
			set[s] = true
		}
	}
	if len(set) == 0 {
		return fullSet()
	}
	return set
}

// ResolveNoScriptSurfaces is the selector variant for consumers that can
// never emit inline script. The script surface is excluded regardless of
// the selector, and the empty fallback is {image, iframe, noscript}.
func ResolveNoScriptSurfaces(mode ...string) SurfaceSet {
	set := ResolveSurfaces(mode...)
	delete(set, SurfaceScript)
	if len(set) == 0 {
		return SurfaceSet{SurfaceImage: true, SurfaceIframe: true, SurfaceNoScript: true}
	}
	return set
}
