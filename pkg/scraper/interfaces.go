package scraper

import (
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// AlbumClient defines the interface for fotoshare.co operations
type AlbumClient interface {
	Login(ctx context.Context, email, password string) error
	GetDocument(ctx context.Context, pageURL string) (*goquery.Document, error)
	GetStream(ctx context.Context, url string) (io.ReadCloser, error)
}
