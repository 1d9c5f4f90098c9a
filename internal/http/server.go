package httpx

import "net/http"

func NewMux(e Env) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", e.Healthz)
	mux.HandleFunc("/readyz", e.Readyz)
	mux.HandleFunc("/px.gif", e.Pixel)
	mux.HandleFunc("/collect", e.Collect)
	mux.HandleFunc("/embed", e.Embed)

	// Script distribution endpoints
	mux.HandleFunc("/pixel.js", e.ServePixelJS)
	mux.HandleFunc("/recorder.js", e.ServeRecorderJS)

	return RequestLogger(MetricsMiddleware(e.Metrics)(cors(mux)))
}
