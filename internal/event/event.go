package event

// Event is the crawler-visit envelope emitted to sinks. Optional fields
// are omitted when empty.
type Event struct {
	EventID string `json:"event_id,omitempty"`
	TS      string `json:"ts,omitempty"`   // ISO8601
	Type    string `json:"type,omitempty"` // "pixel", "bot-visit", "collect", etc.

	Request  RequestInfo       `json:"request,omitempty"`
	Bot      BotInfo           `json:"bot,omitempty"`
	Beacon   BeaconInfo        `json:"beacon,omitempty"`
	Params   map[string]string `json:"params,omitempty"` // raw beacon query params
	ClientIP string            `json:"client_ip,omitempty"`
}

// RequestInfo captures identity signals from the inbound request.
type RequestInfo struct {
	UA              string `json:"ua,omitempty"`
	Referer         string `json:"referer,omitempty"`
	RefererHostname string `json:"referer_hostname,omitempty"`
	Path            string `json:"path,omitempty"`
	RawQuery        string `json:"raw_query,omitempty"`
	Site            string `json:"site,omitempty"`
}

// BotInfo is the classifier verdict for the request's user agent.
type BotInfo struct {
	Matched bool   `json:"matched,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

// BeaconInfo records the server-side beacon fired for this event, if any.
type BeaconInfo struct {
	URL       string `json:"url,omitempty"`
	Triggered bool   `json:"triggered,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}
