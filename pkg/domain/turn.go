package domain

// SectionType is the coarse classification of a turn's role within an episode.
type SectionType string

const (
	SectionIntro        SectionType = "intro"
	SectionSponsor      SectionType = "sponsor"
	SectionConversation SectionType = "conversation"
	SectionOutro        SectionType = "outro"
	SectionUnknown      SectionType = "unknown"
)

// PIIFlag records one detected PII occurrence in a turn's text.
type PIIFlag struct {
	Type  string `bson:"type" json:"type"`
	Value string `bson:"value" json:"value"`
}

// Turn is one contiguous speaker utterance or narration segment with a start
// timestamp. Speaker is nil for speakerless/narration turns. PIIFlags stays
// nil (absent in JSON) when nothing was detected.
type Turn struct {
	Speaker     *string     `bson:"speaker" json:"speaker"`
	T           int         `bson:"t" json:"t"` // start time in whole seconds
	Text        string      `bson:"text" json:"text"`
	SectionType SectionType `bson:"section_type" json:"section_type"`
	IsElided    bool        `bson:"is_elided" json:"is_elided"`
	PIIFlags    []PIIFlag   `bson:"pii_flags,omitempty" json:"pii_flags,omitempty"`
}

// HasPII reports whether any PII was flagged on this turn.
func (t *Turn) HasPII() bool {
	return len(t.PIIFlags) > 0
}
