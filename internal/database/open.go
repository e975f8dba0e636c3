package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds connection establishment when Options.Timeout is unset
const DefaultTimeout = 10 * time.Second

// Backend names the store implementation a connection string selects
func Backend(uri string) string {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return "mongodb"
	case strings.HasPrefix(uri, "firestore://"):
		return "firestore"
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return "postgres"
	default:
		return "sqlite"
	}
}

// Open connects to the store selected by opts.URI. Connection failures are
// returned before any request is served.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("database URI is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	switch Backend(opts.URI) {
	case "mongodb":
		return OpenMongo(ctx, opts)
	case "firestore":
		return OpenFirestore(ctx, strings.TrimPrefix(opts.URI, "firestore://"), opts)
	case "postgres":
		return OpenGorm("postgres", postgresDSN(opts.URI, opts.Timeout), opts)
	default:
		return OpenGorm("sqlite3", strings.TrimPrefix(opts.URI, "sqlite://"), opts)
	}
}

// postgresDSN adds lib/pq's connect_timeout when the URI does not set one
func postgresDSN(uri string, timeout time.Duration) string {
	if strings.Contains(uri, "connect_timeout=") {
		return uri
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("%s%sconnect_timeout=%d", uri, sep, seconds)
}
