package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fotofetch/internal/downloader"
	"fotofetch/pkg/album"
	"fotofetch/pkg/config"
	"fotofetch/pkg/fotoshare"
	"fotofetch/pkg/logger"
	"fotofetch/pkg/storage"
	"fotofetch/pkg/ui"
)

// ErrNoImages is returned when an album page yields no image URLs at all,
// neither directly nor through its thumbnail permalinks
var ErrNoImages = errors.New("no image URLs found in album")

// Summary reports the per-outcome counts of one album run
type Summary struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
}

// Scraper orchestrates the album download process
type Scraper struct {
	client         AlbumClient
	storageManager *storage.Manager
	tracker        *ui.RunTracker
	config         *config.Config
	logger         logger.Logger
}

// New creates a new Scraper instance
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client, err := fotoshare.NewClient(cfg.Fotoshare.BaseURL, cfg.Fotoshare.UserAgent, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Scraper{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// DownloadAlbum authenticates when credentials are configured, resolves the
// album's image URLs, and downloads them concurrently. Individual transfer
// failures are reflected in the summary, not in the returned error.
func (s *Scraper) DownloadAlbum(ctx context.Context, albumURL string) (*Summary, error) {
	if s.config.Fotoshare.Email != "" {
		s.logger.InfoWithFields("Logging in", map[string]interface{}{
			"email": s.config.Fotoshare.Email,
		})
		if err := s.client.Login(ctx, s.config.Fotoshare.Email, s.config.Fotoshare.Password); err != nil {
			s.logger.WithError(err).Error("Login failed")
			return nil, fmt.Errorf("login failed: %w", err)
		}
		ui.PrintSuccess("Logged in")
	}

	resolver := album.NewResolver(
		s.client,
		s.config.Download.AlbumTimeout,
		s.config.Download.PageTimeout,
		s.logger,
	)

	urls, err := resolver.Resolve(ctx, albumURL)
	if err != nil {
		s.logger.WithError(err).WithField("album_url", albumURL).Error("Failed to resolve album")
		return nil, fmt.Errorf("failed to resolve album: %w", err)
	}
	if len(urls) == 0 {
		s.logger.WarnWithFields("Album yielded no image URLs", map[string]interface{}{
			"album_url": albumURL,
		})
		return nil, ErrNoImages
	}

	s.logger.InfoWithFields("Album resolved", map[string]interface{}{
		"album_url":   albumURL,
		"image_count": len(urls),
	})
	ui.PrintInfo("Images found", fmt.Sprintf("%d", len(urls)))

	storageManager, err := storage.NewManager(s.config.Output.Directory)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	s.storageManager = storageManager

	workerPool := downloader.NewWorkerPool(
		s.config.Download.Workers,
		s.client,
		s.storageManager,
		s.config.Download.DownloadTimeout,
		s.logger,
	)
	workerPool.Start()

	s.tracker = ui.NewRunTracker(len(urls))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.processDownloadResults(workerPool.Results())
	}()

	for _, imageURL := range urls {
		filename, err := storage.FileNameForURL(imageURL)
		if err != nil {
			s.logger.WithError(err).WithField("url", imageURL).Error("Cannot derive file name")
			s.tracker.RecordFailed()
			continue
		}

		job := downloader.DownloadJob{
			URL:      imageURL,
			FileName: filename,
		}
		if err := workerPool.Submit(job); err != nil {
			s.logger.WithError(err).WithField("url", imageURL).Error("Failed to submit download job")
			s.tracker.RecordFailed()
		}
	}

	workerPool.Stop()
	wg.Wait()

	downloaded, skipped, failed := s.tracker.Counts()
	summary := &Summary{
		Total:      len(urls),
		Downloaded: downloaded,
		Skipped:    skipped,
		Failed:     failed,
	}

	s.logger.InfoWithFields("Album download completed", map[string]interface{}{
		"album_url":  albumURL,
		"total":      summary.Total,
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	})

	s.tracker.PrintSummary()

	return summary, nil
}

// processDownloadResults consumes results from the worker pool
func (s *Scraper) processDownloadResults(results <-chan downloader.DownloadResult) {
	for result := range results {
		switch result.Status {
		case downloader.StatusDownloaded:
			logger.LogTransfer(result.Job.URL, result.Job.FileName, true, nil)
			s.tracker.RecordDownloaded()
			s.logger.DebugWithFields("Download completed", map[string]interface{}{
				"file":     result.Job.FileName,
				"size":     result.Size,
				"duration": result.Duration,
			})
		case downloader.StatusSkipped:
			s.tracker.RecordSkipped()
			s.logger.DebugWithFields("Skipped existing file", map[string]interface{}{
				"file": result.Job.FileName,
			})
		default:
			logger.LogTransfer(result.Job.URL, result.Job.FileName, false, result.Error)
			s.tracker.RecordFailed()
			ui.PrintError(fmt.Sprintf("\nFailed to download %s", result.Job.URL), result.Error)
		}
		s.tracker.PrintProgress()
	}
}
