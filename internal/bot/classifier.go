// Package bot classifies user-agent strings against known AI-crawler
// signatures.
package bot

import "regexp"

// Signature pairs a stable slug with a compiled user-agent pattern.
type Signature struct {
	Slug    string
	Pattern *regexp.Regexp
}

// Match is the classification result. Matched is false when the
// user agent is absent or no signature applies.
type Match struct {
	Matched bool
	Slug    string
}

// signatures is the ordered, process-wide signature list. Order is the
// tie-break: specific vendor patterns sit above the generic catch-alls so
// a UA matching both resolves to the vendor slug.
var signatures = []Signature{
	{"openai-gptbot", regexp.MustCompile(`(?i)GPTBot`)},
	{"openai-chatgpt-user", regexp.MustCompile(`(?i)ChatGPT-User`)},
	{"openai-searchbot", regexp.MustCompile(`(?i)OAI-SearchBot`)},
	{"anthropic-claudebot", regexp.MustCompile(`(?i)ClaudeBot`)},
	{"anthropic-claude-user", regexp.MustCompile(`(?i)Claude-User`)},
	{"anthropic-claude-web", regexp.MustCompile(`(?i)Claude-Web`)},
	{"google-extended", regexp.MustCompile(`(?i)Google-Extended`)},
	{"google-cloudvertexbot", regexp.MustCompile(`(?i)Google-CloudVertexBot`)},
	{"perplexity-bot", regexp.MustCompile(`(?i)PerplexityBot`)},
	{"perplexity-user", regexp.MustCompile(`(?i)Perplexity-User`)},
	{"bytedance-bytespider", regexp.MustCompile(`(?i)Bytespider`)},
	{"commoncrawl-ccbot", regexp.MustCompile(`(?i)CCBot`)},
	{"apple-applebot-extended", regexp.MustCompile(`(?i)Applebot-Extended`)},
	{"meta-externalagent", regexp.MustCompile(`(?i)Meta-ExternalAgent`)},
	{"meta-externalfetcher", regexp.MustCompile(`(?i)Meta-ExternalFetcher`)},
	{"cohere-ai", regexp.MustCompile(`(?i)cohere-ai`)},
	{"mistral-user", regexp.MustCompile(`(?i)MistralAI-User`)},
	{"amazon-nova-act", regexp.MustCompile(`(?i)NovaAct`)},
	{"duckduckgo-duckassist", regexp.MustCompile(`(?i)DuckAssistBot`)},
	{"youdotcom-youbot", regexp.MustCompile(`(?i)YouBot`)},
	{"diffbot", regexp.MustCompile(`(?i)Diffbot`)},
	{"timpibot", regexp.MustCompile(`(?i)Timpibot`)},
	{"omgili", regexp.MustCompile(`(?i)omgili`)},
	{"ai2-bot", regexp.MustCompile(`(?i)AI2Bot`)},
	{"semrush-ai", regexp.MustCompile(`(?i)SemrushBot-OCOB`)},
	// generic catch-alls stay last so they never mask a vendor slug
	{"generic-ai-agent", regexp.MustCompile(`(?i)\bAI[ -]?Agent\b`)},
	{"generic-llm-crawler", regexp.MustCompile(`(?i)\bLLM[ -]?(crawler|bot)\b`)},
}

// Classify returns the first signature matching ua, in list order.
// It is total: empty input and unknown agents yield an unmatched result.
func Classify(ua string) Match {
	if ua == "" {
		return Match{}
	}
	for _, sig := range signatures {
		if sig.Pattern.MatchString(ua) {
			return Match{Matched: true, Slug: sig.Slug}
		}
	}
	return Match{}
}

// Signatures returns a copy of the signature list for inspection.
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}
