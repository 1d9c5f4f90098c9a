package beacon

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("nil input yields empty map", func(t *testing.T) {
		got := Normalize(nil)
		if got == nil {
			t.Fatal("Normalize(nil) should return a non-nil map")
		}
		if len(got) != 0 {
			t.Errorf("Normalize(nil) = %v, want empty", got)
		}
	})

	t.Run("drops nil values entirely", func(t *testing.T) {
		got := Normalize(Params{"a": "x", "b": nil})
		if _, ok := got["b"]; ok {
			t.Error("nil value should be dropped, not stringified")
		}
		if got["a"] != "x" {
			t.Errorf("a = %v, want x", got["a"])
		}
	})

	t.Run("drops empty strings", func(t *testing.T) {
		got := Normalize(Params{"a": ""})
		if len(got) != 0 {
			t.Errorf("empty value should be dropped, got %v", got)
		}
	})

	t.Run("stringifies scalars canonically", func(t *testing.T) {
		got := Normalize(Params{
			"s": "spring",
			"i": 42,
			"f": 1.5,
			"b": true,
		})
		want := map[string]string{"s": "spring", "i": "42", "f": "1.5", "b": "true"}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("%s = %q, want %q", k, got[k], v)
			}
		}
	})

	t.Run("never emits non-string or empty values", func(t *testing.T) {
		got := Normalize(Params{"x": nil, "y": "", "z": 0, "w": false})
		for k, v := range got {
			if v == "" {
				t.Errorf("key %s has empty value", k)
			}
		}
		// zero and false are real values, not empties
		if got["z"] != "0" || got["w"] != "false" {
			t.Errorf("z=%q w=%q, want 0 and false", got["z"], got["w"])
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("last write wins", func(t *testing.T) {
		got := Merge(map[string]string{"a": "1"}, map[string]string{"a": "2", "b": "3"})
		if got["a"] != "2" || got["b"] != "3" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("nil destination allocates", func(t *testing.T) {
		got := Merge(nil, map[string]string{"a": "1"})
		if got["a"] != "1" {
			t.Errorf("got %v", got)
		}
	})
}

func TestBuildURL(t *testing.T) {
	t.Run("empty params return endpoint unchanged", func(t *testing.T) {
		for _, ep := range []string{
			"https://ai-pixel.example/pixel.gif",
			"https://ai-pixel.example/pixel.gif?x=1",
			"/px.gif",
		} {
			if got := BuildURL(ep, nil); got != ep {
				t.Errorf("BuildURL(%q, nil) = %q, want unchanged", ep, got)
			}
			if got := BuildURL(ep, map[string]string{}); got != ep {
				t.Errorf("BuildURL(%q, {}) = %q, want unchanged", ep, got)
			}
		}
	})

	t.Run("appends with question mark", func(t *testing.T) {
		got := BuildURL("https://x.example/p.gif", map[string]string{"a": "1"})
		if got != "https://x.example/p.gif?a=1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("appends with ampersand when query exists", func(t *testing.T) {
		got := BuildURL("https://x.example/p.gif?a=1", map[string]string{"b": "2"})
		if got != "https://x.example/p.gif?a=1&b=2" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("percent-encodes values", func(t *testing.T) {
		got := BuildURL("/p", map[string]string{"site": "https://example.com"})
		if !strings.Contains(got, "site=https%3A%2F%2Fexample.com") {
			t.Errorf("value not encoded: %q", got)
		}
	})

	t.Run("key order is deterministic", func(t *testing.T) {
		params := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}
		first := BuildURL("/p", params)
		for i := 0; i < 20; i++ {
			if got := BuildURL("/p", params); got != first {
				t.Fatalf("order changed between calls: %q vs %q", first, got)
			}
		}
		if first != "/p?alpha=2&mid=3&zeta=1" {
			t.Errorf("got %q", first)
		}
	})
}
