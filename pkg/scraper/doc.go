// Package scraper coordinates a full album run: optional login, image URL
// resolution, and concurrent downloads into the output directory.
//
// The entry point is DownloadAlbum, which returns a Summary of per-outcome
// counts. Failures of individual image transfers are isolated; only a failed
// login, an unreachable album page, or an album with no images at all abort
// the run.
package scraper
