package server

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bilhallen/filter-engine/pkg/types"
)

// HistoryEntry is one recorded facet snapshot for back/forward support.
type HistoryEntry struct {
	Url   string             `json:"url"`
	State *types.FilterState `json:"state"`
}

// PageBinding is the server-side stand-in for the page: it receives rendered
// fragments, canonical URL updates and navigation requests from the
// dispatcher and keeps the latest of each for the widgets to poll.
type PageBinding struct {
	mu             sync.Mutex
	results        map[string]*types.Result
	urls           map[string]string
	history        map[string][]HistoryEntry
	lastNavigation string
}

func NewPageBinding() *PageBinding {
	return &PageBinding{
		results: map[string]*types.Result{},
		urls:    map[string]string{},
		history: map[string][]HistoryEntry{},
	}
}

func (b *PageBinding) ApplyResult(target string, result *types.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[target] = result
}

func (b *PageBinding) UpdateURL(groupId, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.urls[groupId] = url
}

func (b *PageBinding) Push(groupId, url string, state *types.FilterState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history[groupId] = append(b.history[groupId], HistoryEntry{Url: url, State: state})
}

func (b *PageBinding) Navigate(url string) {
	b.mu.Lock()
	b.lastNavigation = url
	b.mu.Unlock()
	logrus.WithField("url", url).Info("full navigation requested")
}

func (b *PageBinding) Result(target string) *types.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results[target]
}

func (b *PageBinding) URL(groupId string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.urls[groupId]
}

func (b *PageBinding) History(groupId string) []HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]HistoryEntry, len(b.history[groupId]))
	copy(entries, b.history[groupId])
	return entries
}

func (b *PageBinding) LastNavigation() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastNavigation
}
