// Package ingest runs the per-file transcript pipeline (parse, label, chunk)
// over a directory of episode files and fans the results out to the run
// artifacts: per-episode JSON records, a flat chunk stream, an episode index,
// a CSV manifest, and aggregate run statistics.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"transcript-ingest/pkg/chunker"
	"transcript-ingest/pkg/domain"
	"transcript-ingest/pkg/transcript"
)

const (
	DefaultTargetWords  = 280
	DefaultOverlapTurns = 1
)

// Options are the pipeline knobs, passed explicitly; there is no process-wide
// configuration state.
type Options struct {
	IncludeIntro bool
	RedactPII    bool
	TargetWords  int
	OverlapTurns int

	// Workers is the fan-out across input files. Each file's pipeline is
	// independent; shared outputs are written afterwards in file order, so
	// runs are deterministic regardless of worker count.
	Workers int
}

// Store persists episodes and chunks to an external database, in addition to
// the file artifacts. Implemented by db.Client.
type Store interface {
	SaveEpisode(ctx context.Context, ep *domain.Episode) error
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error
}

// Service runs the ingest pipeline.
type Service struct {
	opts       Options
	heuristics transcript.Heuristics
	store      Store
}

// New creates an ingest service. Zero or negative numeric options fall back
// to defaults.
func New(opts Options) *Service {
	if opts.TargetWords <= 0 {
		opts.TargetWords = DefaultTargetWords
	}
	if opts.OverlapTurns < 0 {
		opts.OverlapTurns = DefaultOverlapTurns
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Service{
		opts:       opts,
		heuristics: transcript.DefaultHeuristics(),
	}
}

// SetHeuristics overrides the section-labeling heuristics.
func (s *Service) SetHeuristics(h transcript.Heuristics) {
	s.heuristics = h
}

// SetStore attaches an optional database sink.
func (s *Service) SetStore(st Store) {
	s.store = st
}

// Result is everything produced from one transcript file.
type Result struct {
	Episode *domain.Episode
	Chunks  []domain.Chunk
	HasPII  bool
}

// ProcessFile runs parse, label, and chunk over a single transcript file.
// Invalid byte sequences in the input are replaced, not fatal.
func (s *Service) ProcessFile(path, episodeID, title string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	raw := string(bytes.ToValidUTF8(data, []byte(string(utf8.RuneError))))

	turns := transcript.Parse(raw, transcript.Options{Redact: s.opts.RedactPII})
	transcript.LabelSections(turns, s.heuristics)

	chunks := chunker.Build(turns, chunker.Options{
		IncludeIntro: s.opts.IncludeIntro,
		TargetWords:  s.opts.TargetWords,
		OverlapTurns: s.opts.OverlapTurns,
	})

	sourceFile := filepath.Base(path)
	for i := range chunks {
		chunks[i].EpisodeID = episodeID
		chunks[i].Title = title
		chunks[i].SourceFile = sourceFile
	}

	hasPII := false
	for _, tr := range turns {
		if tr.HasPII() {
			hasPII = true
			break
		}
	}

	return &Result{
		Episode: &domain.Episode{
			EpisodeID:  episodeID,
			Title:      title,
			SourceFile: sourceFile,
			Turns:      turns,
		},
		Chunks: chunks,
		HasPII: hasPII,
	}, nil
}

// IngestDir processes every .txt file in inputDir and writes the run
// artifacts to outputDir. Unreadable files are logged, skipped, and counted;
// the rest of the batch continues.
func (s *Service) IngestDir(ctx context.Context, inputDir, outputDir string) (*domain.RunStats, error) {
	files, err := listTranscriptFiles(inputDir)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(files))
	for i, f := range files {
		titles[i] = InferTitle(f)
	}
	ids := assignEpisodeIDs(titles)

	results := s.processFilesInParallel(ctx, files, ids, titles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.writeRun(ctx, inputDir, outputDir, results)
}

func (s *Service) processFilesInParallel(ctx context.Context, files, ids, titles []string) []*Result {
	results := make([]*Result, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(s.opts.Workers)
	for w := 0; w < s.opts.Workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := s.ProcessFile(files[idx], ids[idx], titles[idx])
				if err != nil {
					log.Printf("Skipping %s: %v", files[idx], err)
					continue
				}
				results[idx] = res
			}
		}()
	}

	for idx := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// writeRun writes all shared outputs from a single goroutine, in file order,
// so repeated runs over unchanged input produce byte-identical streams.
func (s *Service) writeRun(ctx context.Context, inputDir, outputDir string, results []*Result) (*domain.RunStats, error) {
	episodesDir := filepath.Join(outputDir, "episodes")
	if err := os.MkdirAll(episodesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	chunksFile, err := os.Create(filepath.Join(outputDir, "chunks.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("create chunks.jsonl: %w", err)
	}
	defer chunksFile.Close()

	indexFile, err := os.Create(filepath.Join(outputDir, "episodes_index.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("create episodes_index.jsonl: %w", err)
	}
	defer indexFile.Close()

	manifestFile, err := os.Create(filepath.Join(outputDir, "manifest.csv"))
	if err != nil {
		return nil, fmt.Errorf("create manifest.csv: %w", err)
	}
	defer manifestFile.Close()

	csvW := csv.NewWriter(manifestFile)
	if err := csvW.Write([]string{"episode_id", "title", "source_file", "turns", "chunks", "has_pii", "notes"}); err != nil {
		return nil, fmt.Errorf("write manifest header: %w", err)
	}

	stats := &domain.RunStats{
		InputDir:     inputDir,
		OutputDir:    outputDir,
		IncludeIntro: s.opts.IncludeIntro,
		RedactPII:    s.opts.RedactPII,
		TargetWords:  s.opts.TargetWords,
		OverlapTurns: s.opts.OverlapTurns,
	}

	for _, res := range results {
		if res == nil {
			stats.FailedFiles++
			continue
		}
		if err := s.writeEpisode(ctx, episodesDir, chunksFile, indexFile, csvW, res); err != nil {
			return nil, err
		}
		stats.Episodes++
		stats.TotalTurns += len(res.Episode.Turns)
		stats.TotalChunks += len(res.Chunks)
	}

	csvW.Flush()
	if err := csvW.Error(); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	statsData, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "stats.json"), append(statsData, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write stats.json: %w", err)
	}

	return stats, nil
}

func (s *Service) writeEpisode(ctx context.Context, episodesDir string, chunksFile, indexFile *os.File, csvW *csv.Writer, res *Result) error {
	ep := res.Episode

	epData, err := json.MarshalIndent(ep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal episode %s: %w", ep.EpisodeID, err)
	}
	epPath := filepath.Join(episodesDir, ep.EpisodeID+".json")
	if err := os.WriteFile(epPath, append(epData, '\n'), 0o644); err != nil {
		return fmt.Errorf("write episode %s: %w", ep.EpisodeID, err)
	}

	summary := domain.EpisodeSummary{
		EpisodeID:  ep.EpisodeID,
		Title:      ep.Title,
		SourceFile: ep.SourceFile,
		TurnCount:  len(ep.Turns),
		ChunkCount: len(res.Chunks),
		HasPII:     res.HasPII,
	}
	if err := writeJSONLine(indexFile, summary); err != nil {
		return fmt.Errorf("write index line for %s: %w", ep.EpisodeID, err)
	}

	for _, ch := range res.Chunks {
		if err := writeJSONLine(chunksFile, ch); err != nil {
			return fmt.Errorf("write chunk line for %s: %w", ep.EpisodeID, err)
		}
	}

	notes := ""
	if res.HasPII {
		notes = "PII detected (consider -redact-pii)"
	}
	if err := csvW.Write([]string{
		ep.EpisodeID,
		ep.Title,
		ep.SourceFile,
		strconv.Itoa(len(ep.Turns)),
		strconv.Itoa(len(res.Chunks)),
		strconv.FormatBool(res.HasPII),
		notes,
	}); err != nil {
		return fmt.Errorf("write manifest row for %s: %w", ep.EpisodeID, err)
	}

	// Database persistence is best-effort: a failed save never aborts the run.
	if s.store != nil {
		if err := s.store.SaveEpisode(ctx, ep); err != nil {
			log.Printf("Saving episode %s to store failed: %v", ep.EpisodeID, err)
		}
		if len(res.Chunks) > 0 {
			if err := s.store.SaveChunks(ctx, res.Chunks); err != nil {
				log.Printf("Saving chunks for %s to store failed: %v", ep.EpisodeID, err)
			}
		}
	}

	return nil
}

func writeJSONLine(f *os.File, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func listTranscriptFiles(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
