// Package registry records which applications of the repository are running. Each
// application registers a row in the shared webapp table when it starts and removes
// it when it stops; listing the table probes every registered URL and prunes the rows
// of applications that no longer answer.
package registry

import (
	"errors"
	"net/http"
	"time"
)

var (
	// ErrURLUndefined is returned when a reporter is configured without a base URL.
	ErrURLUndefined = errors.New("registry: application URL is undefined")

	// ErrKindUndefined is returned when a reporter is configured without an application kind.
	ErrKindUndefined = errors.New("registry: application kind is undefined")
)

// Webapp is one running application.
type Webapp struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	URL     string    `json:"url"`
	Started time.Time `json:"started"`
	IsUI    bool      `json:"isUI"`
}

// Config describes the application a Reporter registers.
type Config struct {
	// Kind names the application, e.g. "XMLUI" or "REST".
	Kind string
	// URL is the base URL the application answers on. Required.
	URL string
	// IsUI marks interactive user interfaces.
	IsUI bool
	// ProbeTimeout bounds each liveness probe.
	// Default: 5s
	ProbeTimeout time.Duration
	// Client performs the liveness probes.
	// Default: a client with ProbeTimeout as its timeout
	Client *http.Client
}

// DefaultConfig returns a configuration with the default probe settings. Kind and
// URL must still be set.
func DefaultConfig() Config {
	return Config{
		ProbeTimeout: 5 * time.Second,
	}
}

// validate fills defaults and rejects configurations that cannot identify an application.
func (c *Config) validate() error {
	if c.URL == "" {
		return ErrURLUndefined
	}
	if c.Kind == "" {
		return ErrKindUndefined
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.ProbeTimeout}
	}
	return nil
}
