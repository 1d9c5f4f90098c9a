package event

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bildit-platform/aipixel/internal/bot"
	"github.com/bildit-platform/aipixel/pkg/config"
)

// EnrichServerFields fills fields the server can set safely, leaving any
// client-supplied values alone.
func EnrichServerFields(r *http.Request, e *Event, cfg config.Config) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.TS == "" {
		e.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Type == "" {
		e.Type = "pixel"
	}
	if e.Request.UA == "" {
		e.Request.UA = r.UserAgent()
	}
	if e.Request.Referer == "" {
		e.Request.Referer = r.Referer()
	}
	if e.Request.Referer != "" && e.Request.RefererHostname == "" {
		if u, err := url.Parse(e.Request.Referer); err == nil && u != nil {
			e.Request.RefererHostname = u.Hostname()
		}
	}
	if r.URL != nil {
		if e.Request.Path == "" {
			e.Request.Path = r.URL.Path
		}
		if e.Request.RawQuery == "" {
			e.Request.RawQuery = r.URL.RawQuery
		}
		if e.Params == nil {
			e.Params = queryParams(r.URL.Query())
		}
	}
	if e.Request.Site == "" {
		e.Request.Site = e.Params["site"]
	}

	if !e.Bot.Matched && e.Bot.Slug == "" {
		m := bot.Classify(e.Request.UA)
		e.Bot = BotInfo{Matched: m.Matched, Slug: m.Slug}
	}

	if e.ClientIP == "" {
		e.ClientIP = clientIPFromRequest(r, cfg.TrustProxy)
	}
}

// queryParams flattens url.Values to single values, first value wins.
func queryParams(q url.Values) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 && vs[0] != "" {
			out[k] = vs[0]
		}
	}
	return out
}

func clientIPFromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
			return strings.TrimSpace(xrip)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
