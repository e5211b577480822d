package model

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Stage identifies a pipeline stage that already processed a sentence.
type Stage uint8

const (
	StageMorph Stage = 1 << iota
	StageTagged
	StageSenses
)

// Sentence is an ordered sequence of words. Complete is false when the
// sentence was emitted by a flush rather than by a detected boundary.
type Sentence struct {
	Words    []*Word
	Complete bool

	done Stage
}

// Done reports whether stage already ran on the sentence.
func (s *Sentence) Done(stage Stage) bool { return s.done&stage != 0 }

// MarkDone records that stage ran on the sentence.
func (s *Sentence) MarkDone(stage Stage) { s.done |= stage }

// Forms returns the surface forms of the sentence words.
func (s *Sentence) Forms() []string {
	out := make([]string, len(s.Words))
	for i, w := range s.Words {
		out[i] = w.Form
	}
	return out
}

// Batch is the ordered output of one input submission.
type Batch struct {
	ID        string
	Sentences []*Sentence
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewBatch creates a batch with a fresh, monotonically increasing ID.
func NewBatch(sentences []*Sentence) Batch {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Now(), entropy).String()
	entropyMu.Unlock()
	return Batch{ID: id, Sentences: sentences}
}

// Words counts the words over all sentences of the batch.
func (b Batch) Words() int {
	n := 0
	for _, s := range b.Sentences {
		n += len(s.Words)
	}
	return n
}
