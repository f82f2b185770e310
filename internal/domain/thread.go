package domain

// ThreadStatus says whether a reply chain was walked all the way back
// to its root.
type ThreadStatus string

const (
	ThreadResolved   ThreadStatus = "resolved"
	ThreadUnresolved ThreadStatus = "unresolved"
)

// UnresolvedReason classifies why a walk stopped before the root.
type UnresolvedReason string

const (
	ReasonNotFound        UnresolvedReason = "not_found"
	ReasonProtected       UnresolvedReason = "protected"
	ReasonRateLimited     UnresolvedReason = "rate_limited"
	ReasonBudgetExhausted UnresolvedReason = "budget_exhausted"
	ReasonLookupFailed    UnresolvedReason = "lookup_failed"
)

// UnresolvedRef marks the reference a walk could not follow.
type UnresolvedRef struct {
	StatusID string
	Handle   string
	Reason   UnresolvedReason
}

// Thread is one reply chain, ordered earliest first: the root (or the
// oldest tweet that could be retrieved) sits at index 0 and the seed
// tweet at the end.
type Thread struct {
	Tweets     []*Tweet
	Status     ThreadStatus
	Unresolved *UnresolvedRef // Set when Status is ThreadUnresolved
	Lookups    int            // Remote calls spent on this thread
}

// Seed returns the tweet the walk started from.
func (t *Thread) Seed() *Tweet {
	if len(t.Tweets) == 0 {
		return nil
	}
	return t.Tweets[len(t.Tweets)-1]
}

// Root returns the earliest tweet retrieved. It is the true
// conversation root only when the thread is resolved.
func (t *Thread) Root() *Tweet {
	if len(t.Tweets) == 0 {
		return nil
	}
	return t.Tweets[0]
}
