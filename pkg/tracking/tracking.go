package tracking

// Tracker is the observability collaborator. Transport and resolution
// failures end up here instead of surfacing to the user; stale discards are
// counted for visibility but are not errors.
type Tracker interface {
	QueryDispatched(groupId string, seq uint64)
	QueryDuration(groupId string, seconds float64)
	StaleResponseDiscarded(groupId string, seq uint64)
	TransportFailure(groupId string, err error)
	ResolutionFailure(slug string, err error)
}

type NoopTracker struct{}

func (NoopTracker) QueryDispatched(string, uint64)        {}
func (NoopTracker) QueryDuration(string, float64)         {}
func (NoopTracker) StaleResponseDiscarded(string, uint64) {}
func (NoopTracker) TransportFailure(string, error)        {}
func (NoopTracker) ResolutionFailure(string, error)       {}
