package sandbox

import (
	"sync"

	"github.com/nyris/nyris-go/internal/domain/feedback"
	"github.com/nyris/nyris-go/internal/domain/matching/filter"
)

// Exchange is one request received by the sandbox.
type Exchange struct {
	Method      string
	Path        string
	Options     string
	APIKey      string
	ClientID    string
	UserAgent   string
	Accept      string
	Language    string
	ContentType string
	BodySize    int
	Filters     []filter.Filter
	Status      int
}

// Recorder keeps every exchange, feedback event and not-found mark.
// Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	exchanges []Exchange
	events    []feedback.Request
	notFound  []string
}

func (r *Recorder) addExchange(e Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, e)
}

func (r *Recorder) addEvent(ev feedback.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) addNotFound(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = append(r.notFound, id)
}

// Exchanges returns a copy of the recorded exchanges in arrival order.
func (r *Recorder) Exchanges() []Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Exchange(nil), r.exchanges...)
}

// Last returns the most recent exchange.
func (r *Recorder) Last() (Exchange, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.exchanges) == 0 {
		return Exchange{}, false
	}
	return r.exchanges[len(r.exchanges)-1], true
}

// Events returns a copy of the received feedback records.
func (r *Recorder) Events() []feedback.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]feedback.Request(nil), r.events...)
}

// NotFound returns the request ids marked as not found.
func (r *Recorder) NotFound() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notFound...)
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges, r.events, r.notFound = nil, nil, nil
}
