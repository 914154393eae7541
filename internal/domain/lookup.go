package domain

// LookupRequest is the query sent to a knowledge lookup provider.
type LookupRequest struct {
	Query       string
	Sentences   int
	AutoSuggest bool
	Redirect    bool
}

// LookupKind tags the outcome carried by a LookupResult.
type LookupKind int

const (
	LookupFailure LookupKind = iota
	LookupSummary
	LookupAmbiguous
	LookupNotFound
)

func (k LookupKind) String() string {
	switch k {
	case LookupSummary:
		return "summary"
	case LookupAmbiguous:
		return "ambiguous"
	case LookupNotFound:
		return "not_found"
	default:
		return "failure"
	}
}

// LookupResult is the provider outcome. Exactly one of Summary or Candidates
// is meaningful depending on Kind. Err is set for every kind but Summary.
type LookupResult struct {
	Kind       LookupKind
	Summary    string
	Candidates []string
	Err        error
}

func SummaryResult(text string) LookupResult {
	return LookupResult{Kind: LookupSummary, Summary: text}
}

// AmbiguousResult keeps the provider error alongside the candidates for logging.
func AmbiguousResult(candidates []string, err error) LookupResult {
	return LookupResult{Kind: LookupAmbiguous, Candidates: candidates, Err: err}
}

func NotFoundResult(err error) LookupResult {
	return LookupResult{Kind: LookupNotFound, Err: err}
}

func FailureResult(err error) LookupResult {
	return LookupResult{Kind: LookupFailure, Err: err}
}
