package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcript-ingest/pkg/domain"
)

const sampleTranscript = `Lenny (00:00:00): Welcome to the show everyone listening today.

Lenny (00:00:30): This episode is brought to you by Acme.

Lenny (00:01:00): And so with that, here is my conversation with Jane.

Jane (00:01:30): I think most advice about growth is wrong in practice.
Honestly, the opposite is usually true for early teams.

Jane (00:02:00): Here is a second thought about pricing and monetization.

Lenny (00:50:00): Thank you so much for listening.
`

func writeTranscript(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func readFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestIngestDir_WritesAllArtifacts(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTranscript(t, inputDir, "How_Jane_Thinks.txt", sampleTranscript)

	svc := New(Options{TargetWords: 10, OverlapTurns: 0})
	stats, err := svc.IngestDir(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}

	if stats.Episodes != 1 {
		t.Errorf("stats.Episodes = %d, want 1", stats.Episodes)
	}
	if stats.TotalTurns != 6 {
		t.Errorf("stats.TotalTurns = %d, want 6", stats.TotalTurns)
	}
	if stats.TotalChunks == 0 {
		t.Error("stats.TotalChunks = 0, want > 0")
	}

	for _, name := range []string{
		"chunks.jsonl",
		"episodes_index.jsonl",
		"manifest.csv",
		"stats.json",
		filepath.Join("episodes", "how-jane-thinks.json"),
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	// Every chunk line carries episode identity.
	f, err := os.Open(filepath.Join(outputDir, "chunks.jsonl"))
	if err != nil {
		t.Fatalf("open chunks.jsonl: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		lines++
		var ch domain.Chunk
		if err := json.Unmarshal(scanner.Bytes(), &ch); err != nil {
			t.Fatalf("bad chunk line: %v", err)
		}
		if ch.EpisodeID != "how-jane-thinks" {
			t.Errorf("chunk episode_id = %q", ch.EpisodeID)
		}
		if ch.SourceFile != "How_Jane_Thinks.txt" {
			t.Errorf("chunk source_file = %q", ch.SourceFile)
		}
	}
	if lines != stats.TotalChunks {
		t.Errorf("chunks.jsonl has %d lines, stats say %d", lines, stats.TotalChunks)
	}
}

func TestIngestDir_EpisodeRecordKeepsAllTurns(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTranscript(t, inputDir, "ep.txt", sampleTranscript)

	svc := New(Options{})
	if _, err := svc.IngestDir(context.Background(), inputDir, outputDir); err != nil {
		t.Fatalf("IngestDir: %v", err)
	}

	var ep domain.Episode
	data := readFileString(t, filepath.Join(outputDir, "episodes", "ep.json"))
	if err := json.Unmarshal([]byte(data), &ep); err != nil {
		t.Fatalf("unmarshal episode: %v", err)
	}

	// Sponsor and outro turns are excluded from chunking but the episode
	// record keeps them all.
	if len(ep.Turns) != 6 {
		t.Fatalf("episode has %d turns, want 6", len(ep.Turns))
	}
	if ep.Turns[1].SectionType != domain.SectionSponsor {
		t.Errorf("turn 1 section = %q, want sponsor", ep.Turns[1].SectionType)
	}
	if ep.Turns[5].SectionType != domain.SectionOutro {
		t.Errorf("turn 5 section = %q, want outro", ep.Turns[5].SectionType)
	}
}

func TestIngestDir_Idempotent(t *testing.T) {
	inputDir := t.TempDir()
	writeTranscript(t, inputDir, "a_first.txt", sampleTranscript)
	writeTranscript(t, inputDir, "b_second.txt", sampleTranscript)

	out1 := t.TempDir()
	out2 := t.TempDir()
	svc := New(Options{TargetWords: 10, OverlapTurns: 1, Workers: 4})

	if _, err := svc.IngestDir(context.Background(), inputDir, out1); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := svc.IngestDir(context.Background(), inputDir, out2); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, name := range []string{"chunks.jsonl", "episodes_index.jsonl", "manifest.csv"} {
		a := readFileString(t, filepath.Join(out1, name))
		b := readFileString(t, filepath.Join(out2, name))
		if a != b {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}

func TestIngestDir_SlugCollisionGetsSuffix(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTranscript(t, inputDir, "Same_Title.txt", sampleTranscript)
	writeTranscript(t, inputDir, "same title.txt", sampleTranscript)

	svc := New(Options{})
	stats, err := svc.IngestDir(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if stats.Episodes != 2 {
		t.Fatalf("stats.Episodes = %d, want 2", stats.Episodes)
	}

	// Both episode files must exist; neither silently overwrote the other.
	entries, err := os.ReadDir(filepath.Join(outputDir, "episodes"))
	if err != nil {
		t.Fatalf("read episodes dir: %v", err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("episodes dir has %v, want 2 files", names)
	}
}

func TestIngestDir_ManifestFlagsPII(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTranscript(t, inputDir, "with_pii.txt",
		"Jane (00:00:01): reach me at jane@example.com anytime.\n")

	svc := New(Options{})
	if _, err := svc.IngestDir(context.Background(), inputDir, outputDir); err != nil {
		t.Fatalf("IngestDir: %v", err)
	}

	manifest := readFileString(t, filepath.Join(outputDir, "manifest.csv"))
	if !strings.Contains(manifest, "true") || !strings.Contains(manifest, "PII detected") {
		t.Errorf("manifest does not flag PII:\n%s", manifest)
	}
}

func TestIngestDir_EmptyInputDir(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	svc := New(Options{})
	stats, err := svc.IngestDir(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if stats.Episodes != 0 || stats.TotalChunks != 0 {
		t.Errorf("stats = %+v, want zero counts", stats)
	}

	// Shared streams still exist, just empty.
	if _, err := os.Stat(filepath.Join(outputDir, "chunks.jsonl")); err != nil {
		t.Errorf("chunks.jsonl missing: %v", err)
	}
}

type recordingStore struct {
	episodes []string
	chunks   int
}

func (r *recordingStore) SaveEpisode(_ context.Context, ep *domain.Episode) error {
	r.episodes = append(r.episodes, ep.EpisodeID)
	return nil
}

func (r *recordingStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	r.chunks += len(chunks)
	return nil
}

func TestIngestDir_StoreReceivesEpisodesAndChunks(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeTranscript(t, inputDir, "ep.txt", sampleTranscript)

	store := &recordingStore{}
	svc := New(Options{TargetWords: 10})
	svc.SetStore(store)

	stats, err := svc.IngestDir(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}

	if len(store.episodes) != 1 || store.episodes[0] != "ep" {
		t.Errorf("store episodes = %v, want [ep]", store.episodes)
	}
	if store.chunks != stats.TotalChunks {
		t.Errorf("store chunks = %d, stats say %d", store.chunks, stats.TotalChunks)
	}
}
