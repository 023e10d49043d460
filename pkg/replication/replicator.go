// Package replication copies ingested chunk records from MongoDB into a
// Postgres-compatible target (plain Postgres or Supabase), so retrieval
// backends that speak SQL can consume them.
package replication

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"transcript-ingest/pkg/db"
	"transcript-ingest/pkg/domain"
)

// Config wires the replication dependencies.
type Config struct {
	Mongo    *db.Client
	Postgres db.DBProvider
}

// Replicator replicates chunk records from MongoDB to Postgres.
//
// This is intentionally a one-shot, "copy everything new" flow.
type Replicator struct {
	mongo *db.Client
	pg    db.DBProvider
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	return &Replicator{
		mongo: cfg.Mongo,
		pg:    cfg.Postgres,
	}, nil
}

// ReplicateChunksMongoToPostgres reads all chunks from Mongo and inserts them
// into the Postgres `chunk` table. Chunks that already exist (same episode_id
// and chunk_id) are skipped, so re-running replication is idempotent.
func (r *Replicator) ReplicateChunksMongoToPostgres(ctx context.Context) error {
	if err := r.ensureChunkSchema(ctx); err != nil {
		return err
	}

	chunks, err := r.mongo.GetAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("read chunks from mongo: %w", err)
	}

	log.Printf("Loaded %d chunks from Mongo, processing in batches...", len(chunks))

	totalProcessed, totalInserted, err := r.processBatches(ctx, chunks)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d chunks, inserted %d new chunks", totalProcessed, totalInserted)
	return nil
}

// processBatches inserts all chunks in parallel batches and returns total
// processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context, chunks []domain.Chunk) (int, int, error) {
	const processBatchSize = 200
	const numWorkers = 5

	type batchJob struct {
		batch []domain.Chunk
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(chunks) + processBatchSize - 1) / processBatchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(chunks); start += processBatchSize {
		end := start + processBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		jobs <- batchJob{batch: chunks[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and fail fast on error.
	totalProcessed := 0
	totalInserted := 0
	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}
		totalProcessed += result.processed
		totalInserted += result.inserted
		if totalProcessed%1000 == 0 {
			log.Printf("Progress: processed %d/%d chunks, inserted %d new chunks",
				totalProcessed, len(chunks), totalInserted)
		}
	}

	return totalProcessed, totalInserted, nil
}

// processBatch inserts a single batch, skipping chunks already present.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.Chunk, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d chunks)...", start, end, len(batch))

	inserted, err := r.insertChunksTx(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}

	return inserted, nil
}

func (r *Replicator) ensureChunkSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// (episode_id, chunk_id) is the natural key from the ingest pipeline;
	// speakers are stored comma-joined since the set is small and sorted.
	const ddl = `
CREATE TABLE IF NOT EXISTS chunk (
  episode_id TEXT NOT NULL,
  chunk_id INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  source_file TEXT NOT NULL DEFAULT '',
  t_start INTEGER NOT NULL DEFAULT 0,
  t_end INTEGER NOT NULL DEFAULT 0,
  speakers TEXT NOT NULL DEFAULT '',
  text TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (episode_id, chunk_id)
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create chunk table: %w", err)
	}
	return nil
}

// insertChunksTx inserts a batch of chunks within a transaction and returns
// how many rows were actually inserted. Conflicts on the natural key are
// ignored.
func (r *Replicator) insertChunksTx(ctx context.Context, batch []domain.Chunk) (int, error) {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO chunk (episode_id, chunk_id, title, source_file, t_start, t_end, speakers, text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (episode_id, chunk_id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, ch := range batch {
		if ch.EpisodeID == "" {
			continue
		}
		speakers := strings.Join(ch.Speakers, ",")
		res, err := stmt.ExecContext(ctx, ch.EpisodeID, ch.ChunkID, ch.Title,
			ch.SourceFile, ch.TStart, ch.TEnd, speakers, ch.Text)
		if err != nil {
			return 0, fmt.Errorf("insert chunk %s/%d: %w", ch.EpisodeID, ch.ChunkID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
