package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/treediff-dev/treediff"
	"github.com/treediff-dev/treediff/pkg/patch"
	"github.com/treediff-dev/treediff/pkg/protocol"
)

// document is one watched document: its current HTML, the frame
// sequence counter, and the subscribers following it.
type document struct {
	mu   sync.Mutex
	html string
	seq  uint64
	subs map[*subscriber]struct{}
}

// hub routes published document versions to WebSocket subscribers as
// binary patch frames.
type hub struct {
	mu     sync.RWMutex
	docs   map[string]*document
	logger *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		docs:   make(map[string]*document),
		logger: logger,
	}
}

// doc returns the named document, creating it on first use.
func (h *hub) doc(name string) *document {
	h.mu.RLock()
	d := h.docs[name]
	h.mu.RUnlock()
	if d != nil {
		return d
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if d = h.docs[name]; d == nil {
		d = &document{subs: make(map[*subscriber]struct{})}
		h.docs[name] = d
	}
	return d
}

// publishResult reports what a publish did.
type publishResult struct {
	Seq         uint64
	Patches     []patch.Patch
	Subscribers int
	Initial     bool
}

// publish replaces the document's HTML, diffs it against the previous
// version, and broadcasts the resulting patch frame. The first publish
// of a document only records the baseline.
func (h *hub) publish(ctx context.Context, name, html string) (*publishResult, error) {
	d := h.doc(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.html == "" {
		if _, err := treediff.Diff(ctx, strings.NewReader(html), strings.NewReader(html)); err != nil {
			return nil, fmt.Errorf("validate document: %w", err)
		}
		d.html = html
		return &publishResult{Subscribers: len(d.subs), Initial: true}, nil
	}

	patches, err := treediff.Diff(ctx, strings.NewReader(d.html), strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	d.html = html

	res := &publishResult{Patches: patches, Subscribers: len(d.subs)}
	if len(patches) == 0 {
		res.Seq = d.seq
		return res, nil
	}

	d.seq++
	res.Seq = d.seq

	frame := &protocol.PatchFrame{Seq: d.seq, Patches: patches}
	data := frame.Encode()
	for sub := range d.subs {
		if !sub.enqueue(data) {
			// The subscriber's queue is full; drop it rather than stall
			// everyone else on the same document.
			h.logger.Warn("dropping slow subscriber", "doc", name)
			delete(d.subs, sub)
			sub.close()
		}
	}
	return res, nil
}

// subscribe registers a subscriber on the named document.
func (h *hub) subscribe(name string, sub *subscriber) {
	d := h.doc(name)
	d.mu.Lock()
	d.subs[sub] = struct{}{}
	d.mu.Unlock()
}

// unsubscribe removes a subscriber; safe to call twice.
func (h *hub) unsubscribe(name string, sub *subscriber) {
	d := h.doc(name)
	d.mu.Lock()
	delete(d.subs, sub)
	d.mu.Unlock()
}

// snapshot returns the current HTML of the named document, or "" when
// nothing has been published yet.
func (h *hub) snapshot(name string) string {
	d := h.doc(name)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.html
}

// closeAll disconnects every subscriber, for shutdown.
func (h *hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, d := range h.docs {
		d.mu.Lock()
		for sub := range d.subs {
			sub.close()
		}
		d.subs = make(map[*subscriber]struct{})
		d.mu.Unlock()
	}
}
