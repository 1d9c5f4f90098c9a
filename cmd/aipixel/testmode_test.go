package main

import (
	"testing"

	"github.com/bildit-platform/aipixel/internal/bot"
	"github.com/bildit-platform/aipixel/internal/event"
)

func TestGenerateTestEvents(t *testing.T) {
	events := generateTestEvents()
	if len(events) == 0 {
		t.Fatal("no test events generated")
	}

	seen := map[string]bool{}
	for i, e := range events {
		if e.EventID == "" {
			t.Errorf("event %d has no id", i)
		}
		if seen[e.EventID] {
			t.Errorf("duplicate event id %s", e.EventID)
		}
		seen[e.EventID] = true
		if e.TS == "" || e.Type == "" {
			t.Errorf("event %d missing ts/type: %+v", i, e)
		}
	}

	t.Run("bot events agree with the classifier", func(t *testing.T) {
		for _, e := range events {
			if !e.Bot.Matched {
				continue
			}
			m := bot.Classify(e.Request.UA)
			if !m.Matched || m.Slug != e.Bot.Slug {
				t.Errorf("ua %q classifies as %+v, event says %q", e.Request.UA, m, e.Bot.Slug)
			}
		}
	})
}

func TestRunTestMode(t *testing.T) {
	var got []event.Event
	runTestMode(func(ev event.Event) { got = append(got, ev) })
	if len(got) != len(generateTestEvents()) {
		t.Errorf("emitted %d events", len(got))
	}
}
