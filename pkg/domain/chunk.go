package domain

// Chunk is a word-bounded, speaker-annotated span of consecutive usable turns,
// the unit handed to downstream retrieval. The episode identity fields are
// filled in by the ingest layer when the chunk is written to the shared
// chunk stream or persisted.
type Chunk struct {
	EpisodeID  string `bson:"episode_id" json:"episode_id"`
	Title      string `bson:"title" json:"title"`
	SourceFile string `bson:"source_file" json:"source_file"`

	// ChunkID is the zero-based sequence number, unique within an episode.
	ChunkID int `bson:"chunk_id" json:"chunk_id"`

	// TStart and TEnd are the timestamps of the first and last contributing turn.
	TStart int `bson:"t_start" json:"t_start"`
	TEnd   int `bson:"t_end" json:"t_end"`

	// Speakers is the sorted set of distinct speaker labels in the chunk.
	Speakers []string `bson:"speakers" json:"speakers"`

	// Text is the newline-joined "Speaker (TTTTTTs): utterance" rendering of
	// the contributing turns, in original order.
	Text string `bson:"text" json:"text"`
}
