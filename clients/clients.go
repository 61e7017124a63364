// Package clients talks to the external speech, sentiment and
// visualization services over HTTP.
package clients

import (
	"net/http"
	"time"
)

const defaultTimeout = 60 * time.Second

type HTTP struct{ c *http.Client }

// NewHTTP uses a 60s timeout when timeout is not positive.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}
