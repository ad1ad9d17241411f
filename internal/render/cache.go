package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxPools bounds the option sets kept alive. Every terminal resize
// produces a new width, so older sets are dropped first.
const maxPools = 8

// rendererPool keeps one sync.Pool of renderers per option set.
// glamour.TermRenderer must not be shared between concurrent Render calls.
type rendererPool struct {
	mu    sync.Mutex
	pools map[string]*sync.Pool
	order []string // oldest first
}

var globalPool = newRendererPool()

func newRendererPool() *rendererPool {
	return &rendererPool{pools: make(map[string]*sync.Pool)}
}

// key identifies the renderer configuration produced by opts
func (o Options) key() string {
	return fmt.Sprintf("%s:%d:%t:%t:%t:%t",
		resolveStyle(o.Style),
		o.Width,
		o.EnableEmoji,
		o.PreserveNewLines,
		o.TableWrap,
		o.InlineTableLinks,
	)
}

// pool returns the pool for opts, creating it and evicting the oldest if needed
func (p *rendererPool) pool(opts Options) *sync.Pool {
	key := opts.key()

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[key]; ok {
		return pool
	}
	if len(p.order) >= maxPools {
		delete(p.pools, p.order[0])
		p.order = p.order[1:]
	}
	pool := &sync.Pool{}
	p.pools[key] = pool
	p.order = append(p.order, key)
	return pool
}

// get takes a pooled renderer or builds a new one
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if renderer, ok := p.pool(opts).Get().(*glamour.TermRenderer); ok {
		return renderer, nil
	}
	return createRenderer(opts)
}

// put returns a renderer. Renderers for evicted option sets are dropped.
func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer == nil {
		return
	}
	p.mu.Lock()
	pool, ok := p.pools[opts.key()]
	p.mu.Unlock()
	if ok {
		pool.Put(renderer)
	}
}

func (p *rendererPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

func (p *rendererPool) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools = make(map[string]*sync.Pool)
	p.order = nil
}

// createRenderer creates a new TermRenderer with the specified options.
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(resolveStyle(opts.Style)),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pooled renderer.
func ClearCache() {
	globalPool.reset()
}

// CacheSize returns the number of option sets with a live pool.
func CacheSize() int {
	return globalPool.size()
}
