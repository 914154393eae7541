package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"smart-chatbot/internal/domain"
	"smart-chatbot/internal/phrasebook"
)

const (
	DefaultLookupTimeout = 8 * time.Second
	summarySentences     = 2
	maxCandidates        = 4
)

// KnowledgeLookup fetches short topic summaries for free-form queries.
type KnowledgeLookup interface {
	Lookup(ctx context.Context, req domain.LookupRequest) domain.LookupResult
}

// Reply is a resolved answer and the rule or lookup outcome behind it.
type Reply struct {
	Text   string
	Source Source
}

// Resolver turns a user message into a reply. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	rules   []Rule
	lookup  KnowledgeLookup
	timeout time.Duration
}

// NewResolver builds a Resolver over the default rule chain for table.
// A non-positive timeout selects DefaultLookupTimeout.
func NewResolver(table phrasebook.Table, lookup KnowledgeLookup, timeout time.Duration) (*Resolver, error) {
	if lookup == nil {
		return nil, errors.New("usecase: knowledge lookup must not be nil")
	}
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Resolver{
		rules:   DefaultRules(table),
		lookup:  lookup,
		timeout: timeout,
	}, nil
}

// Resolve returns the reply text for input. It always produces a string.
func (r *Resolver) Resolve(ctx context.Context, input string) string {
	return r.Reply(ctx, input).Text
}

// Reply is Resolve plus the Source of the answer.
func (r *Resolver) Reply(ctx context.Context, input string) Reply {
	reply := r.reply(ctx, input)
	recordReply(reply.Source)
	return reply
}

func (r *Resolver) reply(ctx context.Context, input string) Reply {
	text := phrasebook.Normalize(input)
	for _, rule := range r.rules {
		if answer, ok := rule.Match(text); ok {
			return Reply{Text: answer, Source: rule.Source}
		}
	}
	return r.fromLookup(ctx, text)
}

func (r *Resolver) fromLookup(ctx context.Context, query string) Reply {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	res := r.lookup.Lookup(lookupCtx, domain.LookupRequest{
		Query:       query,
		Sentences:   summarySentences,
		AutoSuggest: true,
		Redirect:    true,
	})
	recordLookup(res.Kind, time.Since(start))

	switch res.Kind {
	case domain.LookupSummary:
		return Reply{Text: Clean(res.Summary), Source: SourceLookup}
	case domain.LookupAmbiguous:
		return Reply{Text: ambiguousReply(res.Candidates), Source: SourceAmbiguous}
	case domain.LookupNotFound:
		return Reply{Text: NotFoundReply, Source: SourceNotFound}
	default:
		slog.WarnContext(ctx, "knowledge lookup failed", "query", query, "err", res.Err)
		return Reply{Text: FailureReply, Source: SourceFailure}
	}
}

func ambiguousReply(candidates []string) string {
	return fmt.Sprintf("That could mean: %s.", strings.Join(lo.Subset(candidates, 0, maxCandidates), ", "))
}
