package grid

import "sync"

// CachedSource wraps a Source and builds its grid once, serving the same
// raster to every caller. Sources are deterministic for a fixed
// configuration, so rebuilding per request is pure waste.
type CachedSource struct {
	inner Source

	once sync.Once
	g    *ElevationGrid
	err  error
}

// Cached wraps a source with build-once caching.
func Cached(s Source) *CachedSource {
	return &CachedSource{inner: s}
}

func (c *CachedSource) Grid() (*ElevationGrid, error) {
	c.once.Do(func() {
		c.g, c.err = c.inner.Grid()
	})
	return c.g, c.err
}

func (c *CachedSource) Projector() Projector {
	return c.inner.Projector()
}
