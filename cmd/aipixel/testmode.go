package main

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bildit-platform/aipixel/internal/event"
)

// generateTestEvents creates sample crawler visits for exercising sinks.
func generateTestEvents() []event.Event {
	now := time.Now().UTC()

	return []event.Event{
		{
			EventID: uuid.NewString(),
			TS:      now.Format(time.RFC3339Nano),
			Type:    "bot-visit",
			Request: event.RequestInfo{
				UA:              "Mozilla/5.0 (compatible; GPTBot/1.2; +https://openai.com/gptbot)",
				Referer:         "https://example.com/articles/intro",
				RefererHostname: "example.com",
				Path:            "/px.gif",
				RawQuery:        "site=https%3A%2F%2Fexample.com&mode=img",
				Site:            "https://example.com",
			},
			Bot:      event.BotInfo{Matched: true, Slug: "openai-gptbot"},
			Params:   map[string]string{"site": "https://example.com", "mode": "img"},
			ClientIP: "203.0.113.42",
		},
		{
			EventID: uuid.NewString(),
			TS:      now.Add(1 * time.Second).Format(time.RFC3339Nano),
			Type:    "bot-visit",
			Request: event.RequestInfo{
				UA:   "Mozilla/5.0 AppleWebKit/537.36 (compatible; ClaudeBot/1.0; +claudebot@anthropic.com)",
				Path: "/px.gif",
				Site: "https://docs.example.com",
			},
			Bot: event.BotInfo{Matched: true, Slug: "anthropic-claudebot"},
			Beacon: event.BeaconInfo{
				URL:       "https://upstream.example.net/beacon?bot=anthropic-claudebot&mode=server",
				Triggered: true,
				Status:    204,
			},
			Params:   map[string]string{"site": "https://docs.example.com"},
			ClientIP: "198.51.100.7",
		},
		{
			EventID: uuid.NewString(),
			TS:      now.Add(2 * time.Second).Format(time.RFC3339Nano),
			Type:    "pixel",
			Request: event.RequestInfo{
				UA:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/126.0",
				Path: "/px.gif",
				Site: "https://shop.example.com",
			},
			Params:   map[string]string{"site": "https://shop.example.com", "campaign": "spring"},
			ClientIP: "192.0.2.11",
		},
		{
			EventID: uuid.NewString(),
			TS:      now.Add(3 * time.Second).Format(time.RFC3339Nano),
			Type:    "mouse-end",
			Request: event.RequestInfo{
				UA:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15",
				Path: "/collect",
				Site: "https://example.com",
			},
			Params: map[string]string{
				"duration":  "10000",
				"movements": "42",
			},
			ClientIP: "192.0.2.12",
		},
		{
			EventID: uuid.NewString(),
			TS:      now.Add(4 * time.Second).Format(time.RFC3339Nano),
			Type:    "bot-visit",
			Request: event.RequestInfo{
				UA:   "PerplexityBot/1.0 (+https://perplexity.ai/perplexitybot)",
				Path: "/px.gif",
				Site: "https://blog.example.com",
			},
			Bot: event.BotInfo{Matched: true, Slug: "perplexity-bot"},
			Beacon: event.BeaconInfo{
				Skipped: true,
				Reason:  "fetch-unavailable",
			},
			Params:   map[string]string{"site": "https://blog.example.com"},
			ClientIP: "203.0.113.99",
		},
	}
}

// runTestMode generates and sends test events.
func runTestMode(emitFn func(event.Event)) {
	log.Println("TEST MODE: generating crawler events...")

	events := generateTestEvents()
	for i, e := range events {
		log.Printf("sending test event %d/%d: %s (%s)", i+1, len(events), e.Type, e.EventID)
		emitFn(e)
		if i < len(events)-1 {
			time.Sleep(200 * time.Millisecond)
		}
	}

	log.Println("TEST MODE: all test events sent")
}
