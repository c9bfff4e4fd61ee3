package transcription

import (
	"strings"
	"unicode"

	"github.com/skillsenselab/medscribe/logger"
)

// PostProcessor enriches raw transcription results with medical term hits,
// speaker segments and synthesized paragraph structure. It never mutates its
// input; Process returns a new result value.
type PostProcessor struct {
	vocab []VocabularyEntry
	log   *logger.Logger
}

// NewPostProcessor creates a post-processor over the given vocabulary. A nil
// vocabulary uses the built-in default.
func NewPostProcessor(vocab []VocabularyEntry) *PostProcessor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &PostProcessor{
		vocab: vocab,
		log:   logger.Get("postprocessor"),
	}
}

// Process applies medical enrichment to a result according to the request
// options: term extraction always, speaker segments when word-level speaker
// tags exist, and paragraph synthesis when paragraphs were requested but the
// provider returned none.
func (p *PostProcessor) Process(result *TranscriptionResult, opts TranscriptionOptions) *TranscriptionResult {
	enriched := *result

	enriched.MedicalTerms = p.ExtractTerms(result)

	if opts.Diarize {
		enriched.SpeakerSegments = BuildSpeakerSegments(result.Words)
	}

	if opts.Paragraphs && len(result.Paragraphs) == 0 {
		enriched.Paragraphs = SynthesizeParagraphs(result)
	}

	p.log.Debug("medical enrichment complete", logger.Fields(
		"terms", len(enriched.MedicalTerms),
		"segments", len(enriched.SpeakerSegments),
		"paragraphs", len(enriched.Paragraphs),
	))
	return &enriched
}

// wordSpan maps a word to its character range within the transcript,
// computed by a cumulative walk over word lengths.
type wordSpan struct {
	start int // inclusive char offset
	end   int // exclusive char offset
	word  *Word
}

// wordSpans lays words out over the transcript by accumulating each word's
// length plus one separator character. Vendor transcripts occasionally drift
// from this layout around punctuation; the walk keeps offsets aligned far
// better than assuming a fixed average word width.
func wordSpans(words []Word) []wordSpan {
	spans := make([]wordSpan, 0, len(words))
	cursor := 0
	for i := range words {
		length := len(words[i].Text)
		spans = append(spans, wordSpan{start: cursor, end: cursor + length, word: &words[i]})
		cursor += length + 1
	}
	return spans
}

// spanAt returns the word span enclosing the given character offset, or nil
// when the offset falls past the laid-out words.
func spanAt(spans []wordSpan, offset int) *wordSpan {
	for i := range spans {
		if offset < spans[i].end {
			return &spans[i]
		}
	}
	return nil
}

// ExtractTerms scans the transcript for vocabulary hits. Matching is
// case-insensitive on word boundaries, and every occurrence of a term is
// reported. When word timing exists, each hit carries the timing and
// confidence of the word enclosing the match start; otherwise the overall
// transcript confidence.
func (p *PostProcessor) ExtractTerms(result *TranscriptionResult) []MedicalTerm {
	if result.Transcript == "" {
		return nil
	}

	lowered := strings.ToLower(result.Transcript)
	spans := wordSpans(result.Words)

	var terms []MedicalTerm
	for _, entry := range p.vocab {
		needle := strings.ToLower(entry.Term)
		for from := 0; ; {
			idx := strings.Index(lowered[from:], needle)
			if idx < 0 {
				break
			}
			offset := from + idx
			from = offset + len(needle)

			if !boundedMatch(lowered, offset, len(needle)) {
				continue
			}

			term := MedicalTerm{
				Term:       entry.Term,
				Category:   entry.Category,
				Offset:     offset,
				Length:     len(needle),
				Confidence: result.Confidence,
				Codes:      entry.Codes,
			}
			if span := spanAt(spans, offset); span != nil {
				term.Start = span.word.Start
				term.End = span.word.End
				term.Confidence = span.word.Confidence
			}
			terms = append(terms, term)
		}
	}
	return terms
}

// boundedMatch reports whether the match at [offset, offset+length) sits on
// word boundaries: the adjacent runes, when present, are not letters or
// digits.
func boundedMatch(text string, offset, length int) bool {
	if offset > 0 {
		before := rune(text[offset-1])
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return false
		}
	}
	if end := offset + length; end < len(text) {
		after := rune(text[end])
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return false
		}
	}
	return true
}

// BuildSpeakerSegments merges consecutive same-speaker words into segments.
// A segment boundary falls exactly where the speaker index changes. Words
// without a speaker tag extend the current segment; leading untagged words
// are dropped. Segment confidence is the running average of its words.
func BuildSpeakerSegments(words []Word) []SpeakerSegment {
	var segments []SpeakerSegment
	var texts []string
	count := 0

	flush := func() {
		if count > 0 {
			segments[len(segments)-1].Text = strings.Join(texts, " ")
		}
		texts = texts[:0]
		count = 0
	}

	for i := range words {
		w := &words[i]

		if w.Speaker == nil {
			if count == 0 {
				continue
			}
		} else if count == 0 || segments[len(segments)-1].Speaker != *w.Speaker {
			flush()
			segments = append(segments, SpeakerSegment{
				Speaker: *w.Speaker,
				Start:   w.Start,
			})
		}

		seg := &segments[len(segments)-1]
		count++
		seg.End = w.End
		seg.Confidence += (w.Confidence - seg.Confidence) / float64(count)
		texts = append(texts, w.Text)
	}
	flush()

	return segments
}

// SynthesizeParagraphs builds paragraph structure for providers that return
// none. Paragraphs split on blank lines; sentences split on terminal
// punctuation. Timing is distributed across the audio duration in proportion
// to each piece's position and share of the word sequence.
func SynthesizeParagraphs(result *TranscriptionResult) []Paragraph {
	text := strings.TrimSpace(result.Transcript)
	if text == "" {
		return nil
	}

	duration := result.Duration
	if duration <= 0 && len(result.Words) > 0 {
		duration = result.Words[len(result.Words)-1].End
	}

	blocks := splitBlocks(text)
	total := 0
	for _, b := range blocks {
		total += len(strings.Fields(b))
	}
	if total == 0 {
		return nil
	}

	paragraphs := make([]Paragraph, 0, len(blocks))
	consumed := 0
	for _, block := range blocks {
		start := duration * float64(consumed) / float64(total)
		consumed += len(strings.Fields(block))
		end := duration * float64(consumed) / float64(total)

		paragraphs = append(paragraphs, Paragraph{
			Sentences: splitSentences(block, start, end),
			Start:     start,
			End:       end,
		})
	}
	return paragraphs
}

func splitBlocks(text string) []string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// splitSentences cuts a paragraph into sentences on . ! ? boundaries and
// spreads the paragraph's time window across them by word share.
func splitSentences(block string, start, end float64) []Sentence {
	var parts []string
	var sb strings.Builder
	for _, r := range block {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(sb.String()); s != "" {
				parts = append(parts, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil
	}

	total := 0
	for _, p := range parts {
		total += len(strings.Fields(p))
	}
	if total == 0 {
		return nil
	}

	window := end - start
	sentences := make([]Sentence, 0, len(parts))
	consumed := 0
	for _, p := range parts {
		sStart := start + window*float64(consumed)/float64(total)
		consumed += len(strings.Fields(p))
		sEnd := start + window*float64(consumed)/float64(total)
		sentences = append(sentences, Sentence{Text: p, Start: sStart, End: sEnd})
	}
	return sentences
}
