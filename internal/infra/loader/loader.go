// Package loader implements ports.Loader for the two schemes a
// graph-valued node type can name: a file path resolved against a base
// directory, and an http(s) URL fetched directly. Grounded on the
// workflow.GraphRepository persistence shape (FindByID resolving a
// stored descriptor) generalized from a repository lookup to a fetch
// from either the local filesystem or a remote service.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
)

// Loader resolves a graph-valued node type string to its Descriptor.
type Loader struct {
	httpClient *http.Client

	hostLimitRate  rate.Limit
	hostLimitBurst int
	mu             sync.Mutex
	hostLimiters   map[string]*rate.Limiter
}

func New() *Loader {
	return &Loader{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		hostLimitRate:  rate.Limit(5),
		hostLimitBurst: 10,
		hostLimiters:   make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the per-host limiter for host, creating one the
// first time that host is fetched. A resolvable node type pointing at
// an attacker-controlled or merely chatty host never gets to retry a
// fetch faster than hostLimitRate against it, beyond an initial burst
// of hostLimitBurst fetches.
func (l *Loader) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.hostLimiters[host]
	if !ok {
		lim = rate.NewLimiter(l.hostLimitRate, l.hostLimitBurst)
		l.hostLimiters[host] = lim
	}
	return lim
}

// Load fetches and parses a Descriptor named by urlLike. A value
// containing "://" is treated as an absolute URL; anything else is
// resolved as a filesystem path relative to base.
func (l *Loader) Load(ctx context.Context, urlLike, base string) (*board.Descriptor, error) {
	if strings.Contains(urlLike, "://") {
		return l.loadRemote(ctx, urlLike)
	}
	return l.loadFile(urlLike, base)
}

func (l *Loader) loadRemote(ctx context.Context, rawURL string) (*board.Descriptor, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, boarderrors.InvalidInput("url", err.Error())
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, boarderrors.InvalidInput("url", fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	}

	if err := l.limiterFor(parsed.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, boarderrors.New("LOADER_FETCH_FAILED", fmt.Sprintf("failed to fetch graph %q", rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, boarderrors.NotFound("graph", rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

func (l *Loader) loadFile(name, base string) (*board.Descriptor, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, name)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, boarderrors.NotFound("graph", path)
	}
	return decode(body)
}

func decode(body []byte) (*board.Descriptor, error) {
	var d board.Descriptor
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, boarderrors.DescriptorInvalid(fmt.Sprintf("malformed descriptor json: %v", err))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
