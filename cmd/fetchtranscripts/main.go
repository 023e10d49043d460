package main

import (
	"context"
	"flag"
	"log"
	"time"

	"transcript-ingest/pkg/feedfetch"
)

func main() {
	var (
		feedURL    = flag.String("feed", "", "RSS/Atom feed URL to discover episode pages")
		sitemapURL = flag.String("sitemap", "", "Sitemap URL to discover episode pages (used when -feed is empty)")
		outputDir  = flag.String("output", "content/transcripts", "Directory to write downloaded transcript .txt files")
		max        = flag.Int("max", 100, "Max episodes to process (<=0 means no limit)")
		workers    = flag.Int("workers", 10, "Number of parallel workers to process episode pages")
	)
	flag.Parse()

	if *feedURL == "" && *sitemapURL == "" {
		log.Fatal("either -feed or -sitemap is required")
	}

	ctx := context.Background()

	service := feedfetch.New(*outputDir)
	service.SetWorkers(*workers)

	start := time.Now()
	var err error
	if *feedURL != "" {
		log.Printf("Fetching transcripts from feed: %s (max=%d)", *feedURL, *max)
		err = service.FetchFromFeed(ctx, *feedURL, *max)
	} else {
		log.Printf("Fetching transcripts from sitemap: %s (max=%d)", *sitemapURL, *max)
		err = service.FetchFromSitemap(ctx, *sitemapURL, *max)
	}
	if err != nil {
		log.Fatalf("Transcript fetch failed: %v", err)
	}
	log.Printf("Done. Duration: %s", time.Since(start))
}
