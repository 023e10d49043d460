// Package chunker packs labeled transcript turns into word-bounded retrieval
// chunks with a configurable turn overlap between consecutive chunks.
package chunker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"transcript-ingest/pkg/domain"
	"transcript-ingest/pkg/transcript"
)

// NarrationSpeaker is the placeholder label for turns with no attributed speaker.
const NarrationSpeaker = "Narration"

var wordPattern = regexp.MustCompile(`\w+`)

// Options control chunk assembly.
type Options struct {
	// IncludeIntro also admits intro-labeled turns; conversation turns are
	// always admitted. Sponsor and outro turns never are.
	IncludeIntro bool

	// TargetWords is the approximate word budget per chunk: packing stops at
	// or after this threshold.
	TargetWords int

	// OverlapTurns is the number of trailing turns re-included at the start
	// of the next chunk, for context continuity.
	OverlapTurns int
}

// Build greedily packs usable turns into chunks. Each chunk accumulates turns
// until the running word count reaches TargetWords or the sequence is
// exhausted; the next chunk rewinds by OverlapTurns but never past the
// previous start plus one, so every chunk makes strict forward progress.
// A chunk that ends because the sequence ran out is the final chunk: no
// rewind happens after it, so the tail is never re-emitted. An empty usable
// sequence yields zero chunks.
func Build(turns []*domain.Turn, opts Options) []domain.Chunk {
	usable := filterUsable(turns, opts.IncludeIntro)
	if len(usable) == 0 {
		return nil
	}
	if opts.TargetWords <= 0 {
		opts.TargetWords = 1
	}

	var chunks []domain.Chunk
	i := 0
	for i < len(usable) {
		startI := i
		words := 0
		var lines []string
		speakers := make(map[string]struct{})

		for i < len(usable) && words < opts.TargetWords {
			tr := usable[i]
			spk := NarrationSpeaker
			if tr.Speaker != nil && strings.TrimSpace(*tr.Speaker) != "" {
				spk = strings.TrimSpace(*tr.Speaker)
			}
			speakers[spk] = struct{}{}
			lines = append(lines, fmt.Sprintf("%s (%06ds): %s", spk, tr.T, tr.Text))
			words += wordCount(tr.Text)
			i++
		}

		chunks = append(chunks, domain.Chunk{
			ChunkID:  len(chunks),
			TStart:   usable[startI].T,
			TEnd:     usable[i-1].T,
			Speakers: sortedSpeakers(speakers),
			Text:     strings.TrimSpace(strings.Join(lines, "\n")),
		})

		if i == len(usable) {
			break
		}
		if opts.OverlapTurns > 0 {
			if next := i - opts.OverlapTurns; next > startI+1 {
				i = next
			} else {
				i = startI + 1
			}
		}
	}

	return chunks
}

// filterUsable keeps conversation (and optionally intro) turns that carry
// real content: non-empty after trimming, not elided, not an ellipsis token.
func filterUsable(turns []*domain.Turn, includeIntro bool) []*domain.Turn {
	var usable []*domain.Turn
	for _, tr := range turns {
		if tr.SectionType != domain.SectionConversation &&
			!(includeIntro && tr.SectionType == domain.SectionIntro) {
			continue
		}
		text := strings.TrimSpace(tr.Text)
		if text == "" || tr.IsElided || transcript.IsEllipsis(text) {
			continue
		}
		usable = append(usable, tr)
	}
	return usable
}

func wordCount(s string) int {
	return len(wordPattern.FindAllString(s, -1))
}

func sortedSpeakers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
