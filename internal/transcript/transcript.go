// Package transcript accumulates and normalizes recognized speech segments.
package transcript

import (
	"strings"
	"sync"
)

// Builder collects transcript segments from a recognition source. Final
// segments are committed; the latest interim segment is tracked separately so
// a snapshot can include speech still in flight. Safe for concurrent use.
type Builder struct {
	mu        sync.Mutex
	committed []string
	interim   string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add records one recognition event. Final segments are merged into the
// committed list; non-final ones replace the pending interim segment.
func (b *Builder) Add(text string, final bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if final {
		b.committed = appendSegment(b.committed, text)
		b.interim = ""
		return
	}
	b.interim = text
}

// Text assembles the committed segments plus any trailing interim speech.
func (b *Builder) Text() string {
	b.mu.Lock()
	segments := append([]string(nil), b.committed...)
	interim := b.interim
	b.mu.Unlock()

	if cleaned := cleanSegment(interim); cleaned != "" {
		segments = appendSegment(segments, cleaned)
	}
	return Assemble(segments)
}

// Reset drops all accumulated segments.
func (b *Builder) Reset() {
	b.mu.Lock()
	b.committed = nil
	b.interim = ""
	b.mu.Unlock()
}

// Assemble joins segments and collapses internal whitespace.
func Assemble(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	joined := strings.Join(segments, " ")
	return strings.Join(strings.Fields(joined), " ")
}

// appendSegment merges continuation segments to avoid duplicate growth when a
// recognizer re-emits an extended version of its previous result.
func appendSegment(segments []string, text string) []string {
	text = cleanSegment(text)
	if text == "" {
		return segments
	}
	if len(segments) == 0 {
		return append(segments, text)
	}

	last := cleanSegment(segments[len(segments)-1])
	switch {
	case text == last:
		return segments
	case strings.HasPrefix(text, last):
		segments[len(segments)-1] = text
		return segments
	case strings.HasPrefix(last, text):
		return segments
	default:
		return append(segments, text)
	}
}

// cleanSegment normalizes segment whitespace.
func cleanSegment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}
