package fotoshare

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const loginPath = "/login"

// rejectionMarker is the text fotoshare.co embeds in the sign-in response
// when credentials are rejected, even though the status is still 200.
const rejectionMarker = "invalid"

// Login signs in with the given credentials so private albums become
// reachable. It performs exactly one POST to the sign-in endpoint; the
// session cookie lands in the client's jar on success. The credentials are
// not retained after the call. A failed login is fatal to the run: the
// caller must abort rather than proceed unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) error {
	loginURL := c.baseURL + loginPath

	c.logger.InfoWithFields("signing in", map[string]interface{}{
		"url":   loginURL,
		"email": email,
	})

	form := url.Values{
		"email":    {email},
		"password": {password},
	}

	status, body, err := c.postForm(ctx, loginURL, form)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		c.logger.ErrorWithFields("login rejected by server", map[string]interface{}{
			"status": status,
		})
		return &Error{
			Type:    ErrorTypeAuth,
			Message: fmt.Sprintf("login failed with HTTP %d", status),
			Code:    status,
		}
	}

	// The site answers a bad password with a 200 page containing an
	// "invalid ..." message, so the status alone is not enough.
	if strings.Contains(strings.ToLower(body), rejectionMarker) {
		c.logger.Error("login rejected: credentials refused")
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "login appears to have failed (credentials rejected)",
			Code:    status,
		}
	}

	c.logger.Info("signed in successfully")
	return nil
}
