// Package dispatch fires the server-side beacon for classified requests.
package dispatch

import (
	"net/http"
	"strings"
)

// HeaderLookup is the one capability the dispatcher needs from a request:
// a case-insensitive header read. Adapters below cover the concrete
// container shapes callers hold.
type HeaderLookup interface {
	Get(name string) string
}

type httpHeaderLookup struct{ h http.Header }

func (l httpHeaderLookup) Get(name string) string { return l.h.Get(name) }

// HTTPHeaders adapts a net/http header map.
func HTTPHeaders(h http.Header) HeaderLookup { return httpHeaderLookup{h} }

type mapLookup struct{ m map[string]string }

func (l mapLookup) Get(name string) string {
	for k, v := range l.m {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// HeaderMap adapts a plain map of header name to value.
func HeaderMap(m map[string]string) HeaderLookup { return mapLookup{m} }

type pairsLookup struct{ pairs [][2]string }

func (l pairsLookup) Get(name string) string {
	for _, p := range l.pairs {
		if strings.EqualFold(p[0], name) {
			return p[1]
		}
	}
	return ""
}

// HeaderPairs adapts an ordered list of name/value pairs; the first
// matching name wins.
func HeaderPairs(pairs [][2]string) HeaderLookup { return pairsLookup{pairs} }

// HeaderFunc adapts a getter-style container.
type HeaderFunc func(name string) string

func (f HeaderFunc) Get(name string) string { return f(name) }

func headerGet(h HeaderLookup, name string) string {
	if h == nil {
		return ""
	}
	return h.Get(name)
}
