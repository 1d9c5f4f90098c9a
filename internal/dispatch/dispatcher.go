package dispatch

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bildit-platform/aipixel/internal/beacon"
	"github.com/bildit-platform/aipixel/internal/bot"
	"github.com/bildit-platform/aipixel/pkg/config"
)

// Skip reasons surfaced in Result.Reason.
const (
	ReasonNonBotUserAgent  = "non-bot-user-agent"
	ReasonFetchUnavailable = "fetch-unavailable"
)

// SourceHeader marks outgoing beacons as originating from this server.
const SourceHeader = "X-BILDIT-Source"

const defaultEvent = "request"

// Options is the per-call dispatch configuration.
type Options struct {
	Endpoint string        // beacon target; falls back to config upstream endpoint
	Params   beacon.Params // extra beacon params, normalized before defaults

	RequireBotMatch *bool // nil means true: skip when the UA is not a known bot
	Force           bool  // attempt the call regardless of classification

	UserAgent  string // explicit override; else read from headers
	Referer    string // explicit override; else read from headers
	RequestURL string // the inbound request's own URL, for the site chain

	Method  string            // outgoing method, default GET
	Headers map[string]string // extra outgoing headers

	Debug bool
}

// Result describes one dispatch attempt. Exactly one of triggered,
// skipped, or errored holds; the dispatcher never raises to its caller.
type Result struct {
	Triggered bool   `json:"triggered"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Status    int    `json:"status,omitempty"`
	OK        bool   `json:"ok,omitempty"`
	Error     string `json:"error,omitempty"`

	URL       string `json:"url,omitempty"`
	UserAgent string `json:"ua,omitempty"`
	Referer   string `json:"referer,omitempty"`
	Bot       string `json:"bot,omitempty"`
}

// Dispatcher fires best-effort server-side beacons. A nil client models a
// runtime with no fetch capability: dispatch degrades to a skipped result.
type Dispatcher struct {
	client *http.Client
	cfg    config.Config
}

// New builds a dispatcher around the given client; pass nil to disable
// network calls while keeping URL construction observable.
func New(client *http.Client, cfg config.Config) *Dispatcher {
	return &Dispatcher{client: client, cfg: cfg}
}

// DefaultClient is the outbound client used by the server wiring.
var DefaultClient = &http.Client{Timeout: 10 * time.Second}

// Send runs classification and, when warranted, performs one best-effort
// beacon request. Every failure mode comes back as a structured Result.
func (d *Dispatcher) Send(ctx context.Context, hdr HeaderLookup, opts Options) Result {
	debug := opts.Debug || d.cfg.Debug
	logf := func(format string, args ...any) {
		if debug {
			log.Printf("dispatch: "+format, args...)
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = headerGet(hdr, "User-Agent")
	}
	referer := opts.Referer
	if referer == "" {
		referer = headerGet(hdr, "Referer")
	}
	logf("ua=%q referer=%q", ua, referer)

	match := bot.Classify(ua)
	logf("classifier matched=%v slug=%q", match.Matched, match.Slug)

	res := Result{UserAgent: ua, Referer: referer, Bot: match.Slug}

	requireBot := opts.RequireBotMatch == nil || *opts.RequireBotMatch
	if requireBot && !opts.Force && !match.Matched {
		logf("skip: %s", ReasonNonBotUserAgent)
		res.Skipped = true
		res.Reason = ReasonNonBotUserAgent
		return res
	}

	params := beacon.Normalize(opts.Params)
	setDefault := func(k, v string) {
		if v == "" {
			return
		}
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}
	setDefault("component", "ai-pixel")
	setDefault("framework", "go")
	setDefault("source", "go-server")
	setDefault("mode", "server")
	setDefault("event", defaultEvent)
	setDefault("ts", strconv.FormatInt(time.Now().UnixMilli(), 10))
	setDefault("nonce", uuid.NewString())
	setDefault("ua", ua)
	setDefault("referer", referer)
	setDefault("bot", match.Slug)

	if site := resolveSite(params["site"], referer, opts.RequestURL, hdr); site != "" {
		params["site"] = site
	}
	logf("site=%q", params["site"])

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = d.cfg.UpstreamEndpoint
	}
	res.URL = beacon.BuildURL(endpoint, params)
	logf("url=%s", res.URL)

	if d.client == nil {
		logf("skip: %s", ReasonFetchUnavailable)
		res.Skipped = true
		res.Reason = ReasonFetchUnavailable
		return res
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, res.URL, nil)
	if err != nil {
		logf("request build failed: %v", err)
		res.Error = err.Error()
		return res
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", ua)
	}
	if req.Header.Get(SourceHeader) == "" {
		req.Header.Set(SourceHeader, "go-server")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		logf("beacon failed: %v", err)
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.Triggered = true
	res.Status = resp.StatusCode
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	logf("beacon status=%d ok=%v", res.Status, res.OK)
	return res
}

// resolveSite walks the site fallback chain: explicit param, referer
// origin, request URL origin, forwarded headers, raw Host. First success
// wins; all failing leaves site unset.
func resolveSite(explicit, referer, requestURL string, hdr HeaderLookup) string {
	if explicit != "" {
		return explicit
	}
	if o := origin(referer); o != "" {
		return o
	}
	if o := origin(requestURL); o != "" {
		return o
	}
	if host := headerGet(hdr, "X-Forwarded-Host"); host != "" {
		scheme := headerGet(hdr, "X-Forwarded-Proto")
		if scheme == "" {
			scheme = "https"
		}
		return scheme + "://" + host
	}
	if host := headerGet(hdr, "Host"); host != "" {
		return "https://" + host
	}
	return ""
}

func origin(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
