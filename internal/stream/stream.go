// Package stream splits a fully generated answer into paragraph blocks and
// words, and paces their reveal. Splitting is pure; pacing policy lives in
// Pacer so transports decide how (and whether) to delay.
package stream

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Kind classifies a chunk of streamed output.
type Kind int

const (
	// Word is one word of the answer, with a trailing space.
	Word Kind = iota
	// BlockBreak is the boundary between paragraph blocks.
	BlockBreak
)

// Chunk is one unit of incremental output. Concatenating the Text of every
// chunk in order reproduces the rendered answer.
type Chunk struct {
	Kind Kind
	Text string
}

var blockBoundary = regexp.MustCompile(`\n\n+`)

// Split breaks text into reveal chunks: blocks on blank-line boundaries,
// words on single spaces within a block. Each block is terminated by one
// BlockBreak chunk carrying the paragraph separator.
func Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []Chunk
	for _, block := range blockBoundary.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		for _, word := range strings.Split(block, " ") {
			chunks = append(chunks, Chunk{Kind: Word, Text: word + " "})
		}
		chunks = append(chunks, Chunk{Kind: BlockBreak, Text: "\n\n"})
	}
	return chunks
}

// Assemble reconstructs the revealed text from a chunk sequence.
func Assemble(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

// Pacer holds the reveal pacing policy: a short delay per word and a longer
// pause at block boundaries.
type Pacer struct {
	WordDelay  time.Duration
	BlockDelay time.Duration
}

// Delay returns the pause to apply after emitting a chunk of the given kind.
func (p Pacer) Delay(kind Kind) time.Duration {
	if kind == BlockBreak {
		return p.BlockDelay
	}
	return p.WordDelay
}

// Wait sleeps for the chunk's pacing delay, returning early if ctx is done.
func (p Pacer) Wait(ctx context.Context, kind Kind) error {
	d := p.Delay(kind)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
