package feedfetch

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindTranscriptURL scans episode page HTML for the most likely transcript
// link. Links pointing at a .txt/.pdf document whose anchor text mentions
// "transcript" rank highest, document links rank next, and plain "transcript"
// anchors rank last. The returned href may be relative.
func FindTranscriptURL(html string) (string, error) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", ErrEmptyEpisodeHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var (
		high []string
		med  []string
		low  []string
	)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		docLike := isTranscriptDocumentHref(href)
		textLike := strings.Contains(strings.ToLower(strings.TrimSpace(sel.Text())), "transcript")

		switch {
		case docLike && textLike:
			high = append(high, href)
		case docLike:
			med = append(med, href)
		case textLike:
			low = append(low, href)
		}
	})

	switch {
	case len(high) > 0:
		return high[0], nil
	case len(med) > 0:
		return med[0], nil
	case len(low) > 0:
		return low[0], nil
	default:
		return "", ErrNoTranscriptURL
	}
}

func isTranscriptDocumentHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return hasTranscriptExt(href)
	}
	return hasTranscriptExt(u.Path)
}

func hasTranscriptExt(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}
