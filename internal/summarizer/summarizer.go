package summarizer

import (
	"context"
	"strings"
)

// Sentiment is the one-word label attached to a conversation summary.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Result is the outcome of one summarization pass. Computed fresh each time
// a session ends; never persisted.
type Result struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
}

// Empty is the fixed result for a session that recorded no turns. Callers
// return it without touching the remote service.
func Empty() Result {
	return Result{Summary: "No conversation to summarize", Sentiment: SentimentNeutral}
}

// Client is the secondary completion API contract. The key is supplied per
// call because it belongs to the session, not the process.
type Client interface {
	Summarize(ctx context.Context, apiKey, transcript string) (Result, error)
}

// sentimentMarker is the literal token the instruction template asks the
// model to emit before the label.
const sentimentMarker = "Sentiment:"

// Parse splits a raw model response into summary and sentiment. Text before
// the first marker is the summary, text after is the label, both trimmed.
// A missing marker means the whole response is the summary and the sentiment
// defaults to Neutral.
func Parse(raw string) Result {
	before, after, found := strings.Cut(raw, sentimentMarker)
	if !found {
		return Result{
			Summary:   strings.TrimSpace(raw),
			Sentiment: SentimentNeutral,
		}
	}
	return Result{
		Summary:   strings.TrimSpace(before),
		Sentiment: normalizeSentiment(strings.TrimSpace(after)),
	}
}

// normalizeSentiment maps a free-form label onto the enum by substring
// containment, case-sensitive as received. Anything unrecognized displays
// as Neutral.
func normalizeSentiment(label string) Sentiment {
	switch {
	case strings.Contains(label, string(SentimentPositive)):
		return SentimentPositive
	case strings.Contains(label, string(SentimentNegative)):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
