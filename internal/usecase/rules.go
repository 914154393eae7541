package usecase

import (
	"strings"

	"github.com/samber/lo"

	"smart-chatbot/internal/phrasebook"
)

// Source names the rule or lookup outcome that produced a reply.
type Source string

const (
	SourcePhrasebook Source = "phrasebook"
	SourceGreeting   Source = "greeting"
	SourceIdentity   Source = "identity"
	SourceFarewell   Source = "farewell"
	SourceLookup     Source = "lookup"
	SourceAmbiguous  Source = "ambiguous"
	SourceNotFound   Source = "not_found"
	SourceFailure    Source = "failure"
)

const (
	GreetingReply = "Hello! 👋 How can I help you?"
	IdentityReply = "I'm the Smart Aesthetic Chatbot 🤖"
	FarewellReply = "Goodbye! 👋 Have a great day."
	NotFoundReply = "❌ Couldn't find info on that."
	FailureReply  = "⚠ Something went wrong. Try again."
)

var (
	greetings       = []string{"hi", "hello", "hey"}
	identityPhrases = []string{"your name"}
	farewellPhrases = []string{"bye", "exit"}
)

// Rule answers a normalized message or declines with ok=false.
type Rule struct {
	Source Source
	Match  func(normalized string) (reply string, ok bool)
}

// PhraseRule answers messages that are keys of table.
func PhraseRule(table phrasebook.Table) Rule {
	return Rule{Source: SourcePhrasebook, Match: table.Lookup}
}

// ExactRule answers with reply when the message equals one of phrases.
func ExactRule(source Source, phrases []string, reply string) Rule {
	return Rule{
		Source: source,
		Match: func(normalized string) (string, bool) {
			return reply, lo.Contains(phrases, normalized)
		},
	}
}

// ContainsRule answers with reply when the message contains any of substrings.
func ContainsRule(source Source, substrings []string, reply string) Rule {
	return Rule{
		Source: source,
		Match: func(normalized string) (string, bool) {
			return reply, lo.SomeBy(substrings, func(s string) bool {
				return strings.Contains(normalized, s)
			})
		},
	}
}

// DefaultRules is the fixed rule order: phrase table, greetings, identity,
// farewell. The first matching rule wins.
func DefaultRules(table phrasebook.Table) []Rule {
	return []Rule{
		PhraseRule(table),
		ExactRule(SourceGreeting, greetings, GreetingReply),
		ContainsRule(SourceIdentity, identityPhrases, IdentityReply),
		ContainsRule(SourceFarewell, farewellPhrases, FarewellReply),
	}
}
