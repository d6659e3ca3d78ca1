package chunk

import "strings"

// SentenceChunker packs whole sentences into chunks of at most MaxTokens
// whitespace tokens.
type SentenceChunker struct {
	opts Options
}

var _ Chunker = (*SentenceChunker)(nil)

// NewSentenceChunker creates a sentence chunker with default options.
func NewSentenceChunker() *SentenceChunker {
	return NewSentenceChunkerWithOptions(Options{})
}

// NewSentenceChunkerWithOptions creates a sentence chunker with custom options.
// Non-positive MaxTokens falls back to DefaultMaxTokens.
func NewSentenceChunkerWithOptions(opts Options) *SentenceChunker {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	return &SentenceChunker{opts: opts}
}

// Options returns the effective options.
func (c *SentenceChunker) Options() Options {
	return c.opts
}

// Chunk splits text into sentence-aligned chunks.
func (c *SentenceChunker) Chunk(text string) []string {
	return Split(text, c.opts.MaxTokens)
}

// Split breaks text on . ! ? ; : and greedily packs the trimmed sentences
// into chunks. A chunk closes when the next sentence would push it past
// maxTokens; each chunk is its sentences joined by a space plus a final
// period. Text with no non-blank sentence yields no chunks.
func Split(text string, maxTokens int) []string {
	var (
		chunks  []string
		current []string
		length  int
	)

	for _, sentence := range Sentences(text) {
		tokens := countTokens(sentence)

		if length+tokens > maxTokens && len(current) > 0 {
			chunks = append(chunks, joinChunk(current))
			current = current[:0]
			length = 0
		}

		current = append(current, sentence)
		length += tokens
	}

	if len(current) > 0 {
		chunks = append(chunks, joinChunk(current))
	}
	return chunks
}

// Sentences returns the trimmed, non-blank sentences of text in order.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, isTerminator)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

// countTokens counts space-separated tokens. Runs of spaces count as empty
// tokens, matching how sentence lengths are measured at index time.
func countTokens(sentence string) int {
	return len(strings.Split(sentence, " "))
}

func joinChunk(sentences []string) string {
	return strings.Join(sentences, " ") + "."
}
