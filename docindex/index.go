// Package docindex maps a project to "today's" backing document.
//
// The mapping is valid for a single UTC calendar day. Entries are never
// actively expired; staleness is detected lazily by comparing the date
// recorded with an entry against today's date key.
package docindex

import (
	"sync"
	"time"
)

// DateKey reduces an instant to its UTC calendar date. Every day-equality
// decision in the system goes through this one comparator so continuation
// and index lookup can never disagree about time zones.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

type entry struct {
	documentID string
	dateKey    string
}

// Index is the in-memory project -> document correlation cache.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time
}

// Option defines a function type to modify the Index instance.
type Option func(*Index)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(ix *Index) {
		ix.nowTime = nowFunc
	}
}

// New creates an empty index.
func New(options ...Option) *Index {
	ix := &Index{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(ix)
	}
	return ix
}

// DocumentIDForToday returns the cached document id for the project if
// it was recorded today, else ("", false).
func (ix *Index) DocumentIDForToday(project string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.entries[project]
	if !ok || e.dateKey != DateKey(ix.nowTime()) {
		return "", false
	}
	return e.documentID, true
}

// RecordDocument stores the project -> document mapping for today.
// Unconditional overwrite, last writer wins.
func (ix *Index) RecordDocument(project, documentID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.entries[project] = entry{
		documentID: documentID,
		dateKey:    DateKey(ix.nowTime()),
	}
}

// Forget drops the mapping for a project, used when the backing document
// turns out to no longer exist.
func (ix *Index) Forget(project string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, project)
}
