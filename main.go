package main

import (
	"context"
	"flag"
	"log"
	"time"

	"transcript-ingest/pkg/db"
	"transcript-ingest/pkg/ingest"
)

func main() {
	var (
		inputDir  = flag.String("input", "content/transcripts", "Directory containing transcript .txt files")
		outputDir = flag.String("output", "content/output", "Directory to write episodes, chunks, manifest and stats")

		includeIntro = flag.Bool("include-intro", false, "Include intro turns in chunks")
		redactPII    = flag.Bool("redact-pii", false, "Replace detected emails and phone numbers with redaction tokens")
		targetWords  = flag.Int("target-words", ingest.DefaultTargetWords, "Approximate word count per chunk")
		overlapTurns = flag.Int("overlap-turns", ingest.DefaultOverlapTurns, "Turns of overlap between consecutive chunks")
		workers      = flag.Int("workers", 4, "Number of parallel workers to process transcript files")

		mongoURI = flag.String("mongo-uri", "", "Optional MongoDB connection string; when set, episodes and chunks are also upserted to MongoDB")
		dbName   = flag.String("db", "transcripts", "MongoDB database name")
	)
	flag.Parse()

	ctx := context.Background()

	service := ingest.New(ingest.Options{
		IncludeIntro: *includeIntro,
		RedactPII:    *redactPII,
		TargetWords:  *targetWords,
		OverlapTurns: *overlapTurns,
		Workers:      *workers,
	})

	if *mongoURI != "" {
		dbClient := db.NewClient(*mongoURI, *dbName)
		if err := dbClient.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbClient.Close(ctx)
		service.SetStore(dbClient)
	}

	start := time.Now()
	log.Printf("Ingesting transcripts from %s into %s", *inputDir, *outputDir)

	stats, err := service.IngestDir(ctx, *inputDir, *outputDir)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	log.Printf("Done. Episodes: %d, turns: %d, chunks: %d, failed files: %d. Duration: %s",
		stats.Episodes, stats.TotalTurns, stats.TotalChunks, stats.FailedFiles, time.Since(start))
}
