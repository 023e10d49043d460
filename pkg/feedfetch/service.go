// Package feedfetch downloads podcast transcripts into a local directory for
// the ingest pipeline. Episode pages are discovered from an RSS/Atom feed or
// a sitemap; each page is scanned for a transcript link (.txt or .pdf), the
// transcript is downloaded and extracted to plain text, and the result is
// written as <episode-slug>.txt.
package feedfetch

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"

	"transcript-ingest/pkg/extractor"
	"transcript-ingest/pkg/httpclient"
	"transcript-ingest/pkg/ingest"
)

var (
	ErrEmptyFeedURL          = errors.New("feed URL is empty")
	ErrEmptySitemapURL       = errors.New("sitemap URL is empty")
	ErrEmptyEpisodeURL       = errors.New("episode URL is empty")
	ErrEmptyEpisodeHTML      = errors.New("episode HTML is empty")
	ErrNoEpisodeTitle        = errors.New("no episode title found")
	ErrNoTranscriptURL       = errors.New("no transcript URL found on episode page")
	ErrUnsupportedTranscript = errors.New("unsupported transcript type")
	ErrEmptyTranscriptText   = errors.New("extracted transcript text is empty")
)

// Service downloads episode transcripts into outputDir.
type Service struct {
	client    *httpclient.HTTPClient
	feed      *gofeed.Parser
	outputDir string
	workers   int
}

// New creates a transcript download service writing into outputDir.
func New(outputDir string) *Service {
	return &Service{
		client:    httpclient.NewClient(httpclient.BrowserClient),
		feed:      gofeed.NewParser(),
		outputDir: outputDir,
		workers:   10,
	}
}

// SetWorkers sets the number of parallel workers used to process episode
// pages. If workers <= 0, it will be coerced to 1.
func (s *Service) SetWorkers(workers int) {
	if workers <= 0 {
		s.workers = 1
		return
	}
	s.workers = workers
}

// episodeRef is one discovered episode page, with the title when the source
// (e.g. a feed item) already provides it.
type episodeRef struct {
	url   string
	title string
}

// FetchFromFeed discovers episode pages from an RSS/Atom feed and downloads
// their transcripts. max limits the number of episodes processed; max <= 0
// means no limit.
func (s *Service) FetchFromFeed(ctx context.Context, feedURL string, max int) error {
	if feedURL == "" {
		return ErrEmptyFeedURL
	}

	feed, err := s.feed.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return fmt.Errorf("feed contains no items")
	}

	refs := make([]episodeRef, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			refs = append(refs, episodeRef{url: item.Link, title: item.Title})
		}
	}

	return s.processEpisodes(ctx, refs, max)
}

// FetchFromSitemap discovers episode pages from a sitemap and downloads their
// transcripts. Titles are extracted from the episode pages themselves.
func (s *Service) FetchFromSitemap(ctx context.Context, sitemapURL string, max int) error {
	if sitemapURL == "" {
		return ErrEmptySitemapURL
	}

	sitemapBytes, _, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return fmt.Errorf("fetch sitemap: %w", err)
	}

	locs, err := parseSitemapLocs(sitemapBytes)
	if err != nil {
		return fmt.Errorf("parse sitemap: %w", err)
	}

	refs := make([]episodeRef, 0, len(locs))
	for _, loc := range locs {
		refs = append(refs, episodeRef{url: loc})
	}

	return s.processEpisodes(ctx, refs, max)
}

func (s *Service) processEpisodes(ctx context.Context, refs []episodeRef, max int) error {
	if max > 0 && len(refs) > max {
		refs = refs[:max]
	}
	if len(refs) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	jobs := make(chan episodeRef)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for ref := range jobs {
				if err := s.processEpisode(ctx, ref); err != nil {
					log.Printf("Skipping episode %s: %v", ref.url, err)
				}
			}
		}()
	}

	for _, ref := range refs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- ref:
		}
	}

	close(jobs)
	wg.Wait()
	return nil
}

// processEpisode fetches one episode page, locates its transcript, and writes
// the transcript text to <slug>.txt. Episodes whose transcript file already
// exists are skipped, so repeated fetch runs only download new episodes.
func (s *Service) processEpisode(ctx context.Context, ref episodeRef) error {
	episodeURL := strings.TrimSpace(ref.url)
	if episodeURL == "" {
		return ErrEmptyEpisodeURL
	}

	episodeBytes, _, err := s.fetchURL(ctx, episodeURL)
	if err != nil {
		return fmt.Errorf("fetch episode page: %w", err)
	}

	episodeHTML := string(episodeBytes)
	if strings.TrimSpace(episodeHTML) == "" {
		return ErrEmptyEpisodeHTML
	}

	title := strings.TrimSpace(ref.title)
	if title == "" {
		title, err = extractor.ExtractTitle(episodeHTML)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoEpisodeTitle, err)
		}
	}

	slug := ingest.Slugify(title)
	if slug == "" {
		return ErrNoEpisodeTitle
	}
	outPath := filepath.Join(s.outputDir, slug+".txt")
	if _, err := os.Stat(outPath); err == nil {
		return nil // already downloaded
	}

	transcriptURL, err := FindTranscriptURL(episodeHTML)
	if err != nil {
		return err
	}
	resolved, err := resolveAgainst(episodeURL, transcriptURL)
	if err != nil {
		return fmt.Errorf("resolve transcript URL: %w", err)
	}

	text, err := s.extractTranscriptText(ctx, resolved)
	if err != nil {
		return fmt.Errorf("extract transcript: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyTranscriptText
	}

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript file: %w", err)
	}

	log.Printf("Downloaded transcript for %q -> %s", title, outPath)
	return nil
}

// extractTranscriptText downloads a transcript document and converts it to
// plain text. The extension decides the format, with the response
// content-type as a fallback.
func (s *Service) extractTranscriptText(ctx context.Context, transcriptURL string) (string, error) {
	transcriptURL = strings.TrimSpace(transcriptURL)
	if transcriptURL == "" {
		return "", ErrNoTranscriptURL
	}

	body, contentType, err := s.fetchURL(ctx, transcriptURL)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(urlPath(transcriptURL)))
	switch ext {
	case ".txt":
		return string(body), nil
	case ".pdf":
		return extractor.ExtractTextFromPDFReader(bytes.NewReader(body))
	default:
		lct := strings.ToLower(contentType)
		switch {
		case strings.Contains(lct, "text/plain"):
			return string(body), nil
		case strings.Contains(lct, "application/pdf"):
			return extractor.ExtractTextFromPDFReader(bytes.NewReader(body))
		case strings.Contains(lct, "text/html"):
			// Some shows publish the transcript as a plain web page.
			return extractor.ExtractPageText(string(body))
		default:
			return "", ErrUnsupportedTranscript
		}
	}
}

func (s *Service) fetchURL(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// --- sitemap/url helpers ---

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
}

func parseSitemapLocs(xmlBytes []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(xmlBytes))
	var set urlSet
	if err := decoder.Decode(&set); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Location)
		if loc != "" {
			out = append(out, loc)
		}
	}
	return out, nil
}

func resolveAgainst(baseURL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNoTranscriptURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
