package wikipedia

import (
	"context"
	"errors"

	"smart-chatbot/internal/domain"
)

// Lookup runs Summary and folds its outcome into a domain.LookupResult.
func (c *Client) Lookup(ctx context.Context, req domain.LookupRequest) domain.LookupResult {
	summary, err := c.Summary(ctx, req)
	if err == nil {
		return domain.SummaryResult(summary)
	}
	return classify(err)
}

func classify(err error) domain.LookupResult {
	var disambiguation *DisambiguationError
	switch {
	case errors.As(err, &disambiguation):
		return domain.AmbiguousResult(disambiguation.Options, err)
	case errors.Is(err, ErrPageNotFound):
		return domain.NotFoundResult(err)
	default:
		return domain.FailureResult(err)
	}
}
