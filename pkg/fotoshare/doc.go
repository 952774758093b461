// Package fotoshare implements the HTTP session against fotoshare.co.
//
// The Client wraps net/http with a cookie jar, browser-like default headers
// and typed errors, and exposes the three request shapes the downloader
// needs: parsed HTML pages (GetDocument), streaming bodies for image
// transfers (GetStream), and the one-shot sign-in form POST (Login).
package fotoshare
