// Package enrich annotates assembled chunks with retrieval metadata:
// the primary guest speaker, contrarian-stance signals, business topic tags,
// and a human-readable citation.
package enrich

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"transcript-ingest/pkg/chunker"
	"transcript-ingest/pkg/domain"
)

// UnknownSpeaker is used when a chunk carries no usable speaker names.
const UnknownSpeaker = "Unknown"

// EnrichedChunk is a chunk record extended with retrieval metadata.
type EnrichedChunk struct {
	EpisodeID  string   `json:"episode_id"`
	Title      string   `json:"title"`
	ChunkID    int      `json:"chunk_id"`
	TStart     int      `json:"t_start"`
	TEnd       int      `json:"t_end"`
	Speakers   []string `json:"speakers"`
	Text       string   `json:"text"`

	SpeakerPrimary         string   `json:"speaker_primary"`
	HasContrarianSignal    bool     `json:"has_contrarian_signal"`
	ContrarianSignalsFound []string `json:"contrarian_signals_found"`
	Topics                 []string `json:"topics"`
	Citation               string   `json:"citation"`
}

// ContrarianSignals are phrases indicating a disagreement or
// against-the-grain stance. Matched case-insensitively as substrings.
var ContrarianSignals = []string{
	"i disagree",
	"but actually",
	"the opposite is true",
	"that's a misconception",
	"people get this wrong",
	"contrary to popular belief",
	"i'd push back on",
	"the problem with that is",
	"that's not quite right",
	"i think people overestimate",
	"i think people underestimate",
	"the counterintuitive thing",
	"what most people miss",
	"the uncomfortable truth",
	"here's where i differ",
	"i would challenge",
	"the conventional wisdom is wrong",
	"most advice says",
	"everyone tells you to",
	"the standard approach",
	"i've seen the opposite",
	"in my experience, the reverse",
}

type topicEntry struct {
	name     string
	keywords []string
}

// topicTaxonomy maps business topics to trigger keywords. Kept as an ordered
// slice so topic tags come out in a stable order.
var topicTaxonomy = []topicEntry{
	{"product-market-fit", []string{
		"product market fit", "pmf", "finding fit", "market validation",
		"product-market fit", "fit with the market",
	}},
	{"growth-strategy", []string{
		"growth", "scaling", "acquisition", "retention", "viral",
		"growth loops", "flywheel", "network effects",
	}},
	{"pricing", []string{
		"pricing", "monetization", "willingness to pay", "freemium",
		"subscription", "revenue model", "pricing strategy",
	}},
	{"hiring", []string{
		"hiring", "recruiting", "team building", "culture fit",
		"interviewing", "talent", "onboarding",
	}},
	{"fundraising", []string{
		"fundraising", "investors", "series a", "venture capital", "vc",
		"raising money", "pitch deck", "valuation",
	}},
	{"leadership", []string{
		"leadership", "management", "ceo", "founder", "delegation",
		"executive", "decision making", "vision",
	}},
	{"user-research", []string{
		"user research", "customer interviews", "jobs to be done", "jtbd",
		"customer discovery", "user feedback", "qualitative",
	}},
	{"experimentation", []string{
		"a/b test", "experiment", "hypothesis", "data-driven",
		"metrics", "analytics", "measurement",
	}},
	{"positioning", []string{
		"positioning", "differentiation", "category", "messaging",
		"brand", "narrative", "storytelling",
	}},
	{"roadmap", []string{
		"roadmap", "prioritization", "backlog", "planning",
		"strategy", "okrs", "goals",
	}},
	{"culture", []string{
		"culture", "values", "mission", "team dynamics",
		"remote work", "collaboration",
	}},
	{"product-development", []string{
		"product development", "engineering", "technical debt",
		"shipping", "mvp", "iteration", "agile",
	}},
}

// Enricher annotates chunks. Host speaker names are never picked as the
// primary speaker, since the primary speaker should identify the guest.
type Enricher struct {
	skipSpeakers map[string]bool
}

// NewEnricher creates an Enricher. hostSpeakers lists speaker names to skip
// when picking the primary speaker (e.g. the show host). Narration is always
// skipped.
func NewEnricher(hostSpeakers ...string) *Enricher {
	skip := map[string]bool{chunker.NarrationSpeaker: true}
	for _, name := range hostSpeakers {
		if name != "" {
			skip[name] = true
		}
	}
	return &Enricher{skipSpeakers: skip}
}

// Enrich annotates a single chunk.
func (e *Enricher) Enrich(c domain.Chunk) EnrichedChunk {
	signals := DetectSignals(c.Text)

	return EnrichedChunk{
		EpisodeID:              c.EpisodeID,
		Title:                  c.Title,
		ChunkID:                c.ChunkID,
		TStart:                 c.TStart,
		TEnd:                   c.TEnd,
		Speakers:               c.Speakers,
		Text:                   c.Text,
		SpeakerPrimary:         e.primarySpeaker(c.Speakers),
		HasContrarianSignal:    len(signals) > 0,
		ContrarianSignalsFound: signals,
		Topics:                 ClassifyTopics(c.Text),
		Citation:               fmt.Sprintf("%s (%s)", c.Title, formatTimestamp(c.TStart)),
	}
}

// DetectSignals returns the contrarian signal phrases found in text.
func DetectSignals(text string) []string {
	textLower := strings.ToLower(text)
	var found []string
	for _, signal := range ContrarianSignals {
		if strings.Contains(textLower, signal) {
			found = append(found, signal)
		}
	}
	return found
}

// ClassifyTopics returns the business topics whose keywords appear in text.
func ClassifyTopics(text string) []string {
	textLower := strings.ToLower(text)
	var topics []string
	for _, entry := range topicTaxonomy {
		for _, kw := range entry.keywords {
			if strings.Contains(textLower, kw) {
				topics = append(topics, entry.name)
				break
			}
		}
	}
	return topics
}

// primarySpeaker picks the first speaker that is not a host or narration.
// Falls back to the first speaker, then to UnknownSpeaker.
func (e *Enricher) primarySpeaker(speakers []string) string {
	for _, s := range speakers {
		if s != "" && !e.skipSpeakers[s] {
			return s
		}
	}
	if len(speakers) > 0 {
		return speakers[0]
	}
	return UnknownSpeaker
}

// formatTimestamp renders seconds as M:SS.
func formatTimestamp(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ProcessChunksFile reads a chunks.jsonl file, enriches every record, and
// optionally writes the enriched records to outputPath (pass "" to skip).
func (e *Enricher) ProcessChunksFile(inputPath, outputPath string) ([]EnrichedChunk, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	var enriched []EnrichedChunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c domain.Chunk
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("decode chunk record: %w", err)
		}
		enriched = append(enriched, e.Enrich(c))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chunks file: %w", err)
	}

	if outputPath != "" {
		out, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()

		w := bufio.NewWriter(out)
		enc := json.NewEncoder(w)
		for _, c := range enriched {
			if err := enc.Encode(c); err != nil {
				return nil, fmt.Errorf("write enriched record: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("flush output file: %w", err)
		}
	}

	return enriched, nil
}

// Stats summarizes an enrichment run.
type Stats struct {
	Total       int            `json:"total"`
	WithSignals int            `json:"with_signals"`
	TopicCounts map[string]int `json:"topic_counts"`
}

// Summarize computes run statistics over enriched chunks.
func Summarize(chunks []EnrichedChunk) Stats {
	st := Stats{TopicCounts: map[string]int{}}
	st.Total = len(chunks)
	for _, c := range chunks {
		if c.HasContrarianSignal {
			st.WithSignals++
		}
		for _, topic := range c.Topics {
			st.TopicCounts[topic]++
		}
	}
	return st
}
