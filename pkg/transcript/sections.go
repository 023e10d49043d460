package transcript

import (
	"strings"

	"transcript-ingest/pkg/domain"
)

// Heuristics are the tunable knobs for section labeling: phrase lists matched
// against lowercased turn text, and the sponsor timeout escape valve.
type Heuristics struct {
	SponsorStart      []string
	SponsorTransition []string
	OutroMarkers      []string

	// SponsorTimeoutSeconds caps a sponsor segment. Sponsor reads that never
	// emit a recognized transition phrase (transcription gaps, ad-lib wording)
	// would otherwise swallow the rest of the episode.
	SponsorTimeoutSeconds int
}

// DefaultHeuristics returns the phrase lists and timeout tuned for typical
// interview-podcast transcripts.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		SponsorStart: []string{
			"this episode is brought to you by",
			"sponsored by",
			"our sponsor",
			"support this podcast",
			"thanks to our sponsor",
		},
		SponsorTransition: []string{
			"and so with that",
			"with that",
			"let's get into",
			"now, my guest",
			"here's my conversation",
			"okay, let's start",
			"let's start",
			"today's guest",
			"i bring you",
		},
		OutroMarkers: []string{
			"thank you so much for listening",
			"thanks so much for listening",
			"if you enjoyed this episode",
			"please subscribe",
			"see you next time",
			"leave a review",
		},
		SponsorTimeoutSeconds: 8 * 60,
	}
}

// sectionState is the labeler state carried between turns. outroMode is a
// one-way latch; sawSponsor records whether any prior turn was labeled
// sponsor, which flips later plain content from intro to conversation.
type sectionState struct {
	sponsorMode   bool
	sponsorStartT int
	outroMode     bool
	sawSponsor    bool
	started       bool
}

// turnFeatures is the view of a turn the transition function is allowed to see.
type turnFeatures struct {
	textLower string
	t         int
}

// next is the labeling transition table, pure over (state, features).
// Rules are evaluated top to bottom; the first match wins.
func (h Heuristics) next(st sectionState, f turnFeatures) (sectionState, domain.SectionType) {
	isFirst := !st.started
	st.started = true

	if st.outroMode {
		return st, domain.SectionOutro
	}
	if containsAny(f.textLower, h.OutroMarkers) {
		st.outroMode = true
		return st, domain.SectionOutro
	}

	if !st.sponsorMode && containsAny(f.textLower, h.SponsorStart) {
		st.sponsorMode = true
		st.sponsorStartT = f.t
		st.sawSponsor = true
		return st, domain.SectionSponsor
	}

	if st.sponsorMode {
		// Two exits, either of which reclassifies this turn itself as
		// conversation rather than sponsor.
		if containsAny(f.textLower, h.SponsorTransition) ||
			f.t-st.sponsorStartT > h.SponsorTimeoutSeconds {
			st.sponsorMode = false
			st.sponsorStartT = 0
			return st, domain.SectionConversation
		}
		return st, domain.SectionSponsor
	}

	// Plain content: the opening turn is pre-roll/intro banter; everything
	// after the first sponsor break is the main conversation.
	if isFirst {
		return st, domain.SectionIntro
	}
	if st.sawSponsor {
		return st, domain.SectionConversation
	}
	return st, domain.SectionIntro
}

// LabelSections assigns a section type to every turn in a single forward
// pass, mutating turns in place. Once a turn is labeled outro, every
// subsequent turn is outro as well.
func LabelSections(turns []*domain.Turn, h Heuristics) {
	var st sectionState
	for _, tr := range turns {
		var label domain.SectionType
		st, label = h.next(st, turnFeatures{
			textLower: strings.ToLower(tr.Text),
			t:         tr.T,
		})
		tr.SectionType = label
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
