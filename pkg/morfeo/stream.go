package morfeo

import (
	"context"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/splitter"
)

// Stream feeds text to an Analyzer chunk by chunk. It keeps the sentence
// that is still open at the end of a chunk and the byte offset of the next
// chunk. A Stream is not safe for concurrent use; create one per caller.
type Stream struct {
	a      *Analyzer
	carry  splitter.Carry
	offset int
}

// NewStream returns a stream starting at offset 0 with an empty carry.
func (a *Analyzer) NewStream() *Stream {
	return &Stream{a: a}
}

// Process analyzes one chunk of text, normally an input line. Token
// offsets continue from the previous chunk, counting one separator byte
// between chunks. Sentences left open at the end of the chunk are kept
// for the next call unless output.always_flush is set.
func (s *Stream) Process(ctx context.Context, text string) (model.Batch, error) {
	tokens := s.a.tok.TokenizeAt(text, s.offset)
	s.offset += len(text) + 1

	var sentences []*model.Sentence
	if s.a.split == nil {
		if len(tokens) > 0 {
			sentences = []*model.Sentence{tokenSentence(tokens)}
		}
	} else {
		sentences, s.carry = s.a.split.Split(s.carry, tokens, s.a.opts.Output.AlwaysFlush)
	}
	if err := s.a.Analyze(ctx, sentences); err != nil {
		return model.Batch{}, err
	}
	return model.NewBatch(sentences), nil
}

// Flush closes the pending sentence, if any, and analyzes it.
func (s *Stream) Flush(ctx context.Context) (model.Batch, error) {
	if s.a.split == nil || s.carry.Len() == 0 {
		return model.NewBatch(nil), nil
	}
	var sentences []*model.Sentence
	sentences, s.carry = s.a.split.Split(s.carry, nil, true)
	if err := s.a.Analyze(ctx, sentences); err != nil {
		return model.Batch{}, err
	}
	return model.NewBatch(sentences), nil
}

// Skip advances the stream past a chunk of n bytes that is not analyzed,
// so later offsets still match the source.
func (s *Stream) Skip(n int) {
	s.offset += n + 1
}

// Pending reports how many tokens wait in the carry.
func (s *Stream) Pending() int { return s.carry.Len() }

// tokenSentence wraps the tokens of a chunk when no splitter runs.
func tokenSentence(tokens []model.Token) *model.Sentence {
	s := &model.Sentence{Complete: true, Words: make([]*model.Word, len(tokens))}
	for i, t := range tokens {
		s.Words[i] = model.NewWord(t)
	}
	return s
}
