package album

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fotofetch/pkg/logger"
)

// PageFetcher fetches a remote page and parses it into a goquery document
type PageFetcher interface {
	GetDocument(ctx context.Context, pageURL string) (*goquery.Document, error)
}

var (
	// imagePattern matches raster image extensions, optionally followed by a
	// query string
	imagePattern = regexp.MustCompile(`(?i)\.(?:jpe?g|png|gif)(?:\?|$)`)

	// permalinkPattern matches the per-photo page path used by fotoshare
	permalinkPattern = regexp.MustCompile(`/p/\w+`)
)

// fullResAttrs are the img attributes fotoshare uses for full-resolution
// URLs, in priority order. Every present attribute is collected as its own
// candidate; the site mixes templates, so stopping at the first hit can miss
// a distinct URL. Duplicates are absorbed by the candidate set.
var fullResAttrs = []string{
	"data-full",     // preferred attr used by viewer when downloads allowed
	"data-original", // seen on some templates
	"data-src",      // lazy-loaded images
	"src",           // fall-back
}

// Resolver extracts full-resolution image URLs from an album page.
//
// It tries two strategies in order: direct extraction from the album markup,
// then a thumbnail-traversal fallback that visits each photo permalink page.
// The fallback only runs when direct extraction finds nothing at all.
type Resolver struct {
	fetcher      PageFetcher
	logger       logger.Logger
	albumTimeout time.Duration
	pageTimeout  time.Duration
}

// NewResolver creates a resolver. pageTimeout applies to each tier-2
// permalink fetch and should be shorter than albumTimeout; a single photo
// page matters less than the album itself.
func NewResolver(fetcher PageFetcher, albumTimeout, pageTimeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		fetcher:      fetcher,
		logger:       log,
		albumTimeout: albumTimeout,
		pageTimeout:  pageTimeout,
	}
}

// Resolve returns the deduplicated, lexicographically sorted list of image
// URLs referenced by the album page. An empty result with a nil error is a
// legitimate outcome; the caller decides whether that is fatal. A failure to
// fetch the album page itself is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, albumURL string) ([]string, error) {
	base, err := url.Parse(albumURL)
	if err != nil {
		return nil, fmt.Errorf("invalid album URL %q: %w", albumURL, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.albumTimeout)
	defer cancel()

	doc, err := r.fetcher.GetDocument(fetchCtx, albumURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album page: %w", err)
	}

	candidates := r.extractDirect(doc, base)

	if len(candidates) == 0 {
		r.logger.InfoWithFields("no directly embedded images, traversing thumbnails", map[string]interface{}{
			"album": albumURL,
		})
		candidates = r.traverseThumbnails(ctx, doc, base)
	}

	urls := make([]string, 0, len(candidates))
	for u := range candidates {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	r.logger.InfoWithFields("album resolved", map[string]interface{}{
		"album":  albumURL,
		"images": len(urls),
	})

	return urls, nil
}

// extractDirect collects image URLs embedded directly in the album markup.
// Anchors contribute their link target; img elements contribute every
// present full-res attribute.
func (r *Resolver) extractDirect(doc *goquery.Document, base *url.URL) map[string]struct{} {
	candidates := make(map[string]struct{})

	doc.Find("a, img").Each(func(_ int, sel *goquery.Selection) {
		var srcs []string
		if goquery.NodeName(sel) == "a" {
			if href, ok := sel.Attr("href"); ok {
				srcs = append(srcs, href)
			}
		} else {
			for _, attr := range fullResAttrs {
				if v, ok := sel.Attr(attr); ok {
					srcs = append(srcs, v)
				}
			}
		}

		for _, src := range srcs {
			if src == "" || !imagePattern.MatchString(src) {
				continue
			}
			abs, err := resolveAndStrip(base, src)
			if err != nil {
				continue
			}
			candidates[abs] = struct{}{}
		}
	})

	return candidates
}

// traverseThumbnails is the fallback for albums that only expose thumbnails:
// every photo permalink is fetched and the first img element on it is
// inspected. A page that fails to fetch is logged and skipped; it never
// aborts the remaining pages. Traversal is sequential.
func (r *Resolver) traverseThumbnails(ctx context.Context, doc *goquery.Document, base *url.URL) map[string]struct{} {
	candidates := make(map[string]struct{})

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !permalinkPattern.MatchString(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	for _, link := range links {
		if err := r.inspectPermalink(ctx, link, candidates); err != nil {
			r.logger.WarnWithFields("could not inspect photo page", map[string]interface{}{
				"url":   link,
				"error": err.Error(),
			})
		}
	}

	return candidates
}

// inspectPermalink fetches one photo page and adds its image, if any, to the
// candidate set
func (r *Resolver) inspectPermalink(ctx context.Context, link string, candidates map[string]struct{}) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	doc, err := r.fetcher.GetDocument(fetchCtx, link)
	if err != nil {
		return err
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return err
	}

	src, ok := doc.Find("img[src]").First().Attr("src")
	if !ok || !imagePattern.MatchString(src) {
		return nil
	}

	abs, err := resolveAndStrip(pageURL, src)
	if err != nil {
		return err
	}
	candidates[abs] = struct{}{}
	return nil
}

// resolveAndStrip resolves ref against base and drops any query string,
// giving the canonical form used for dedup and local filenames
func resolveAndStrip(base *url.URL, ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	abs := base.ResolveReference(parsed)
	abs.RawQuery = ""
	return abs.String(), nil
}
