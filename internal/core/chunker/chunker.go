// Package chunker splits extracted document text into overlapping,
// boundary-aware segments sized for embedding-model input limits.
package chunker

import (
	"strings"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Config tunes the splitter.
//
// Size:    target chunk length in characters.
// Overlap: characters shared between consecutive chunks for context bleed.
type Config struct {
	Size    int
	Overlap int
}

func (c Config) withDefaults() Config {
	if c.Size <= 0 {
		c.Size = DefaultChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 2
	}
	return c
}

// Chunk is one emitted segment. Start and End are character offsets into the
// source text, with End exclusive. TotalChunks is back-filled once the full
// sequence is known.
type Chunk struct {
	Index       int
	Content     string
	Start       int
	End         int
	TotalChunks int
}

// Split cuts text into overlapping chunks of roughly cfg.Size characters.
//
// When a hard cut falls before the end of text, the cut point snaps backward
// to the nearest sentence terminal (., ?, !) provided the boundary lies in
// the back half of the window; otherwise the hard cut stands so progress and
// chunk count stay bounded. Whitespace-only windows are skipped without
// claiming an index. Split is pure and deterministic: the same text and
// config always produce an identical sequence.
func Split(text string, cfg Config) []Chunk {
	cfg = cfg.withDefaults()

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var out []Chunk
	for start := 0; start < n; {
		end := start + cfg.Size
		if end > n {
			end = n
		} else if end < n {
			if b := snapToSentence(runes, start, end, cfg.Size); b > 0 {
				end = b
			}
		}

		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			out = append(out, Chunk{
				Index:   len(out),
				Content: piece,
				Start:   start,
				End:     end,
			})
		}

		if end == n {
			break
		}
		next := end - cfg.Overlap
		if next <= start {
			// Degenerate short remainder; do not re-emit it.
			next = end
		}
		start = next
	}

	for i := range out {
		out[i].TotalChunks = len(out)
	}
	return out
}

// snapToSentence searches backward from the hard cut for a sentence-terminal
// character and returns the offset just past it, or 0 when no boundary sits
// within the back half of the window.
func snapToSentence(runes []rune, start, hardEnd, size int) int {
	limit := start + size/2
	for i := hardEnd - 1; i >= limit; i-- {
		switch runes[i] {
		case '.', '?', '!':
			return i + 1
		}
	}
	return 0
}
