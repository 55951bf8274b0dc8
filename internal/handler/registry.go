// Package handler implements the kit-based handler registry (C5): a
// kit is a named bundle of handlers merged in priority order so an
// earlier-registered kit's entries win over a later one's, plus
// resolution of graph-valued handler types (a URL-like node type that
// names a subgraph to load and invoke) through a throttled, shared
// in-flight Loader cache. Grounded on the teacher's name-keyed Tool
// registry and its worker registry's mutex-guarded map, generalized
// from "named tools a caller executes by name" to "named node types a
// traversal machine dispatches by type, any of which may itself be a
// graph".
package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/ports"
	"golang.org/x/sync/singleflight"
)

// Invoke runs a handler's logic given shifted inputs and returns its
// outputs keyed by port name.
type Invoke func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error)

// Handler is a single node-type implementation. Describe and Metadata
// are optional introspection hooks; only Invoke is required.
type Handler struct {
	Invoke   Invoke
	Describe func() map[string]interface{}
	Metadata map[string]interface{}
}

// Kit is a named bundle of handlers keyed by the node type they serve.
type Kit map[string]Handler

// GraphInvoker runs a loaded subgraph Descriptor to completion and
// returns its captured output. It is supplied by the composition root
// (cmd/boardrun) rather than imported directly, so this package never
// depends on internal/subgraph — avoiding an import cycle, since
// subgraph invocation itself resolves handlers through this registry.
type GraphInvoker func(ctx context.Context, d *board.Descriptor, inputs map[string]interface{}) (map[string]interface{}, error)

// resolutionWindow is how long a graph-handler resolution is trusted
// before the registry re-resolves it, bounding load storms from a
// board that fans out the same URL-typed node across many invocations
// in a short window.
const resolutionWindow = 10 * time.Second

type cacheEntry struct {
	handler   Handler
	err       error
	fetchedAt time.Time
}

// Registry merges kits and resolves handler types, including
// graph-valued ones, against a Loader.
type Registry struct {
	mu   sync.RWMutex
	kits []Kit

	loader       ports.Loader
	graphInvoker GraphInvoker

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
	group   singleflight.Group
}

// New creates a Registry. loader and invoker may be nil if the board
// being run never references a graph-valued handler type.
func New(loader ports.Loader, invoker GraphInvoker) *Registry {
	return &Registry{
		loader:       loader,
		graphInvoker: invoker,
		cache:        make(map[string]cacheEntry),
	}
}

// Use registers a kit. Kits registered earlier take priority: if two
// kits both define a type, the first one registered wins.
func (r *Registry) Use(k Kit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kits = append(r.kits, k)
}

// Resolve looks up the handler for a node type, trying registered kits
// in registration order before falling back to graph-valued resolution
// through the Loader.
func (r *Registry) Resolve(ctx context.Context, nodeType string) (Handler, error) {
	r.mu.RLock()
	for _, k := range r.kits {
		if h, ok := k[nodeType]; ok {
			r.mu.RUnlock()
			return h, nil
		}
	}
	r.mu.RUnlock()

	if looksLikeGraphURL(nodeType) {
		return r.resolveGraph(ctx, nodeType)
	}

	return Handler{}, boarderrors.NoHandler(nodeType)
}

func looksLikeGraphURL(nodeType string) bool {
	return strings.Contains(nodeType, "://") || strings.HasSuffix(nodeType, ".json") || strings.HasPrefix(nodeType, "#")
}

// resolveGraph loads and wraps a graph-valued type behind the
// resolution cache, sharing a single in-flight Load across concurrent
// resolvers of the same type.
func (r *Registry) resolveGraph(ctx context.Context, urlLike string) (Handler, error) {
	if r.loader == nil || r.graphInvoker == nil {
		return Handler{}, boarderrors.NoHandler(urlLike)
	}

	r.cacheMu.Lock()
	if entry, ok := r.cache[urlLike]; ok && time.Since(entry.fetchedAt) < resolutionWindow {
		r.cacheMu.Unlock()
		return entry.handler, entry.err
	}
	r.cacheMu.Unlock()

	v, err, _ := r.group.Do(urlLike, func() (interface{}, error) {
		desc, loadErr := r.loader.Load(ctx, urlLike, "")
		if loadErr != nil {
			return Handler{}, loadErr
		}
		h := Handler{
			Invoke: func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
				return r.graphInvoker(ctx, desc, inputs)
			},
			Metadata: map[string]interface{}{"graph": urlLike},
		}

		r.cacheMu.Lock()
		r.cache[urlLike] = cacheEntry{handler: h, fetchedAt: time.Now()}
		r.cacheMu.Unlock()

		return h, nil
	})

	if err != nil {
		r.cacheMu.Lock()
		r.cache[urlLike] = cacheEntry{err: err, fetchedAt: time.Now()}
		r.cacheMu.Unlock()
		return Handler{}, err
	}
	return v.(Handler), nil
}
