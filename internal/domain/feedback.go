package domain

import "fmt"

// FeedbackKind is the annotation a user attaches to an assistant reply.
type FeedbackKind string

const (
	FeedbackHelpful    FeedbackKind = "helpful"
	FeedbackNotHelpful FeedbackKind = "not_helpful"
	FeedbackBiased     FeedbackKind = "biased"
)

// ParseFeedbackKind accepts the three known kinds.
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch k := FeedbackKind(s); k {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackBiased:
		return k, nil
	}
	return "", fmt.Errorf("unknown feedback kind %q (want helpful, not_helpful or biased)", s)
}
