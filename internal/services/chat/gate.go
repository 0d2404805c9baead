package chat

import (
	"regexp"
	"strings"
)

// BiasAdvisory is shown when the gate blocks a message.
const BiasAdvisory = "Your message may contain gendered language. Please consider rephrasing to be more inclusive."

var genderedTerms = []string{
	"he", "she", "his", "her", "him", "hers",
	"boy", "girl", "man", "men", "woman", "women",
	"guys", "gals", "dude", "lady", "ladies",
}

var genderedPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(genderedTerms, "|") + `)\b`)

// GateResult is the verdict on one outgoing message.
type GateResult struct {
	Blocked  bool
	Advisory string
	// Term is the first matched word, lower-cased. Empty when not blocked.
	Term string
}

// Gate is a lexical check for gendered pronouns and role nouns. It is a
// heuristic: "Shell" passes, "HE" does not.
func Gate(text string) GateResult {
	m := genderedPattern.FindString(text)
	if m == "" {
		return GateResult{}
	}
	return GateResult{Blocked: true, Advisory: BiasAdvisory, Term: strings.ToLower(m)}
}
