// Package beacon builds the tracking beacon URLs and delivery surfaces.
package beacon

import (
	"net/url"
	"strconv"
)

// Params is an arbitrary key/value configuration supplied by callers.
// Values may be strings, numbers, bools, or nil; nil entries are dropped
// during normalization instead of being stringified.
type Params map[string]any

// Normalize coerces params into a flat string mapping. It never fails:
// nil values and values that stringify to "" are dropped, everything else
// gets a canonical string conversion. A nil input yields an empty map.
func Normalize(p Params) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		out[k] = s
	}
	return out
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		// Anything exotic still round-trips through its Stringer/format.
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
		return ""
	}
}

// Merge overlays each params map onto dst in order, last write wins.
// dst may be nil.
func Merge(dst map[string]string, overlays ...map[string]string) map[string]string {
	if dst == nil {
		dst = map[string]string{}
	}
	for _, o := range overlays {
		for k, v := range o {
			dst[k] = v
		}
	}
	return dst
}

// BuildURL appends params to endpoint as a percent-encoded query string.
// Empty params return the endpoint unchanged; an endpoint that already
// carries a query is extended with "&". Keys are encoded in sorted order
// so the same inputs always produce the same URL.
func BuildURL(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	sep := "?"
	for _, c := range endpoint {
		if c == '?' {
			sep = "&"
			break
		}
	}
	return endpoint + sep + q.Encode()
}
