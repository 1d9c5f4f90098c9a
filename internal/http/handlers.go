package httpx

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/bildit-platform/aipixel/internal/beacon"
	"github.com/bildit-platform/aipixel/internal/dispatch"
	"github.com/bildit-platform/aipixel/internal/event"
	"github.com/bildit-platform/aipixel/internal/metrics"
	"github.com/bildit-platform/aipixel/pkg/config"
)

var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00,
}

type Env struct {
	Cfg        config.Config
	Emit       func(event.Event) // injected sink fan-out
	Metrics    *metrics.Metrics
	Dispatcher *dispatch.Dispatcher // optional upstream beacon forwarding
}

func (e Env) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (e Env) Readyz(w http.ResponseWriter, r *http.Request) {
	// TODO: verify sink connectivity (Kafka/PG) before returning 200
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Pixel serves the 1x1 GIF and records the visit. Known AI crawlers get a
// bot-visit event; when an upstream endpoint is configured their hit is
// also forwarded through the dispatcher.
func (e Env) Pixel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	evt := event.Event{Type: "pixel"}
	event.EnrichServerFields(r, &evt, e.Cfg)
	if evt.Bot.Matched {
		evt.Type = "bot-visit"
		if e.Metrics != nil {
			e.Metrics.IncrementBotMatches(evt.Bot.Slug)
		}
		if e.Dispatcher != nil && e.Cfg.UpstreamEndpoint != "" {
			e.forwardUpstream(r, &evt)
		}
	}
	if e.Emit != nil {
		e.Emit(evt)
	}
	writePixel(w, r.Method == http.MethodHead)
}

// forwardUpstream fires a best-effort server-side beacon for a bot visit
// and folds the outcome into the event before it reaches the sinks.
func (e Env) forwardUpstream(r *http.Request, evt *event.Event) {
	res := e.Dispatcher.Send(r.Context(), dispatch.HTTPHeaders(r.Header), dispatch.Options{
		Params:     beacon.Params{"site": evt.Request.Site, "event": "bot-visit"},
		UserAgent:  evt.Request.UA,
		Referer:    evt.Request.Referer,
		RequestURL: r.URL.String(),
	})
	evt.Beacon = event.BeaconInfo{
		URL:       res.URL,
		Triggered: res.Triggered,
		Skipped:   res.Skipped,
		Reason:    res.Reason,
		Status:    res.Status,
		Error:     res.Error,
	}
	if e.Metrics != nil {
		switch {
		case res.Triggered:
			e.Metrics.IncrementBeaconsDispatched("triggered")
		case res.Skipped:
			e.Metrics.IncrementBeaconsDispatched("skipped")
		default:
			e.Metrics.IncrementBeaconsDispatched("error")
		}
	}
}

func writePixel(w http.ResponseWriter, headOnly bool) {
	h := w.Header()
	h.Set("Content-Type", "image/gif")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	if headOnly {
		return
	}
	_, _ = w.Write(pixelGIF)
}

// Collect accepts a single Event object or an array of Events from the
// inline scripts (POST, application/json).
func (e Env) Collect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		http.Error(w, "content-type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, e.Cfg.MaxBodyBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	accepted := 0
	if len(raw) > 0 && raw[0] == '[' {
		var arr []event.Event
		if err := json.Unmarshal(raw, &arr); err != nil {
			http.Error(w, "invalid json array", http.StatusBadRequest)
			return
		}
		for i := range arr {
			if arr[i].Type == "" {
				arr[i].Type = "collect"
			}
			event.EnrichServerFields(r, &arr[i], e.Cfg)
			if e.Emit != nil {
				e.Emit(arr[i])
			}
			accepted++
		}
	} else {
		var ev event.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			http.Error(w, "invalid json object", http.StatusBadRequest)
			return
		}
		if ev.Type == "" {
			ev.Type = "collect"
		}
		event.EnrichServerFields(r, &ev, e.Cfg)
		if e.Emit != nil {
			e.Emit(ev)
		}
		accepted = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Aipixel-Accepted", strconv.Itoa(accepted))
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{"accepted": accepted, "status": "ok"})
}

// Embed returns the HTML fragment for the requested surface set so host
// pages can server-side-include the beacon. Query params pass through to
// the beacon URL; "mode" picks the surfaces.
func (e Env) Embed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	var modes []string
	if m := q.Get("mode"); m != "" {
		for _, tok := range strings.Split(m, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				modes = append(modes, strings.ToLower(tok))
			}
		}
	}
	endpoint := q.Get("endpoint")
	if endpoint == "" {
		endpoint = e.Cfg.PixelEndpoint
	}
	params := beacon.Params{}
	for k, vs := range q {
		if k == "mode" || k == "endpoint" || len(vs) == 0 {
			continue
		}
		params[k] = vs[0]
	}

	frag, err := beacon.RenderSurfaces(e.Cfg, endpoint, params, modes...)
	if err != nil {
		log.Printf("embed: render failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(frag))
}

// ServePixelJS distributes the standalone bootstrap/render/mouse script.
func (e Env) ServePixelJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	js, err := beacon.PixelScript(beacon.ScriptOptions{
		Endpoint: e.Cfg.PixelEndpoint,
		Params:   scriptParams(r),
		Alt:      e.Cfg.PixelAlt,
	})
	if err != nil {
		log.Printf("pixel.js: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeScript(w, js)
}

// ServeRecorderJS distributes the mouse/click/scroll recorder script.
func (e Env) ServeRecorderJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	js, err := beacon.RecorderScript(beacon.RecorderOptions{
		Endpoint:     e.Cfg.PixelEndpoint,
		Params:       scriptParams(r),
		DurationMS:   e.Cfg.RecordDurationMS,
		ThrottleMS:   e.Cfg.RecordThrottleMS,
		MaxMovements: e.Cfg.RecordMaxMoves,
	})
	if err != nil {
		log.Printf("recorder.js: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeScript(w, js)
}

// scriptParams carries query params on the script request into the
// generated beacon URLs, first value wins.
func scriptParams(r *http.Request) map[string]string {
	q := r.URL.Query()
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

func writeScript(w http.ResponseWriter, js string) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(js))
}
