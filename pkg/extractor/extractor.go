// Package extractor converts fetched episode pages and transcript documents
// into plain text for the ingest pipeline.
package extractor

import (
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ExtractPageText extracts the readable main text from an HTML page. Used
// when a transcript link points at an HTML page rather than a .txt/.pdf
// document.
func ExtractPageText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}

// ExtractTitle extracts the episode title from an episode page.
func ExtractTitle(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract title: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		return "", fmt.Errorf("title not found in HTML")
	}

	return title, nil
}
