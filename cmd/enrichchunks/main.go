package main

import (
	"flag"
	"log"
	"sort"
	"strings"

	"transcript-ingest/pkg/enrich"
)

func main() {
	var (
		input  = flag.String("input", "content/output/chunks.jsonl", "Path to chunks.jsonl")
		output = flag.String("output", "content/output/chunks_enriched.jsonl", "Path to write enriched chunks (empty to skip writing)")
		hosts  = flag.String("hosts", "", "Comma-separated host speaker names to skip when picking the primary speaker")
	)
	flag.Parse()

	var hostNames []string
	for _, name := range strings.Split(*hosts, ",") {
		if name = strings.TrimSpace(name); name != "" {
			hostNames = append(hostNames, name)
		}
	}

	enricher := enrich.NewEnricher(hostNames...)
	chunks, err := enricher.ProcessChunksFile(*input, *output)
	if err != nil {
		log.Fatalf("Enrichment failed: %v", err)
	}

	stats := enrich.Summarize(chunks)
	log.Printf("Enriched %d chunks, %d with contrarian signals", stats.Total, stats.WithSignals)

	topics := make([]string, 0, len(stats.TopicCounts))
	for topic := range stats.TopicCounts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if stats.TopicCounts[topics[i]] != stats.TopicCounts[topics[j]] {
			return stats.TopicCounts[topics[i]] > stats.TopicCounts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	for _, topic := range topics {
		log.Printf("  %s: %d", topic, stats.TopicCounts[topic])
	}
}
