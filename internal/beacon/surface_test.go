package beacon

import "testing"

func fullSurfaces() []Surface {
	return []Surface{SurfaceImage, SurfaceIframe, SurfaceNoScript, SurfaceScript}
}

func assertSet(t *testing.T, got SurfaceSet, want ...Surface) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("set size = %d (%v), want %d (%v)", len(got), got.List(), len(want), want)
	}
	for _, s := range want {
		if !got.Has(s) {
			t.Errorf("missing surface %s in %v", s, got.List())
		}
	}
}

func TestResolveSurfaces(t *testing.T) {
	t.Run("no mode yields full set", func(t *testing.T) {
		assertSet(t, ResolveSurfaces(), fullSurfaces()...)
	})

	t.Run("auto yields full set", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("auto"), fullSurfaces()...)
	})

	t.Run("server yields full set", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("server"), fullSurfaces()...)
	})

	t.Run("image yields image only", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("image"), SurfaceImage)
	})

	t.Run("img aliases image", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("img"), SurfaceImage)
	})

	t.Run("single surface tokens map to themselves", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("iframe"), SurfaceIframe)
		assertSet(t, ResolveSurfaces("noscript"), SurfaceNoScript)
		assertSet(t, ResolveSurfaces("script"), SurfaceScript)
	})

	t.Run("list flattens and dedupes", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("image", "img", "iframe"), SurfaceImage, SurfaceIframe)
	})

	t.Run("list with mode alias expands", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("auto", "image"), fullSurfaces()...)
	})

	t.Run("unrecognized tokens are dropped silently", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("bogus", "iframe"), SurfaceIframe)
	})

	t.Run("all-unrecognized falls back to full set", func(t *testing.T) {
		assertSet(t, ResolveSurfaces("bogus", "nope"), fullSurfaces()...)
	})

	t.Run("empty list falls back to full set", func(t *testing.T) {
		assertSet(t, ResolveSurfaces([]string{}...), fullSurfaces()...)
	})
}

func TestResolveNoScriptSurfaces(t *testing.T) {
	t.Run("script never present for any input", func(t *testing.T) {
		inputs := [][]string{
			nil,
			{"auto"},
			{"server"},
			{"script"},
			{"script", "script"},
			{"image", "script"},
			{"bogus"},
		}
		for _, in := range inputs {
			got := ResolveNoScriptSurfaces(in...)
			if got.Has(SurfaceScript) {
				t.Errorf("mode %v: script surface leaked into %v", in, got.List())
			}
		}
	})

	t.Run("script alone falls back to non-script trio", func(t *testing.T) {
		assertSet(t, ResolveNoScriptSurfaces("script"), SurfaceImage, SurfaceIframe, SurfaceNoScript)
	})

	t.Run("default excludes script", func(t *testing.T) {
		assertSet(t, ResolveNoScriptSurfaces(), SurfaceImage, SurfaceIframe, SurfaceNoScript)
	})

	t.Run("explicit single surface preserved", func(t *testing.T) {
		assertSet(t, ResolveNoScriptSurfaces("image"), SurfaceImage)
	})
}

func TestSurfaceSetList_Order(t *testing.T) {
	got := ResolveSurfaces("script", "image", "noscript", "iframe").List()
	want := fullSurfaces()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want fixed order %v", got, want)
		}
	}
}
