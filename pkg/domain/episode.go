package domain

// Episode is the full-fidelity record of one parsed transcript file: every
// turn is retained, independent of chunking.
type Episode struct {
	EpisodeID  string  `bson:"episode_id" json:"episode_id"`
	Title      string  `bson:"title" json:"title"`
	SourceFile string  `bson:"source_file" json:"source_file"`
	Turns      []*Turn `bson:"turns" json:"turns"`
}

// EpisodeSummary is the one-line index record written per episode.
type EpisodeSummary struct {
	EpisodeID  string `bson:"episode_id" json:"episode_id"`
	Title      string `bson:"title" json:"title"`
	SourceFile string `bson:"source_file" json:"source_file"`
	TurnCount  int    `bson:"turn_count" json:"turn_count"`
	ChunkCount int    `bson:"chunk_count" json:"chunk_count"`
	HasPII     bool   `bson:"has_pii" json:"has_pii"`
}

// RunStats aggregates counts and the effective configuration for one ingest run.
type RunStats struct {
	Episodes     int    `json:"episodes"`
	TotalTurns   int    `json:"total_turns"`
	TotalChunks  int    `json:"total_chunks"`
	FailedFiles  int    `json:"failed_files"`
	InputDir     string `json:"input_dir"`
	OutputDir    string `json:"output_dir"`
	IncludeIntro bool   `json:"include_intro"`
	RedactPII    bool   `json:"redact_pii"`
	TargetWords  int    `json:"target_words"`
	OverlapTurns int    `json:"overlap_turns"`
}
