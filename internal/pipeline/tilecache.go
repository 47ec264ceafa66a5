package pipeline

import (
	"fmt"
	"image"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// TileCache is a bounded cache of decoded fixed-size tiles wrapping a
// Generator. Fetch assembles an arbitrary rectangle from cached tiles,
// invoking the generator only for tiles not already resident. Concurrent
// requests for the same missing tile are collapsed into one decode.
//
// Eviction is LRU in whole tiles. An undersized cache never produces wrong
// pixels, it only re-decodes tiles that were evicted too early.
type TileCache struct {
	gen    Generator
	bounds image.Rectangle
	tileW  int
	tileH  int

	mu     sync.Mutex
	tiles  *lru.Cache
	flight singleflight.Group
}

type tileKey struct {
	col int
	row int
}

// NewTileCache creates a cache of at most capacity tiles of tileW x tileH
// pixels over the given image bounds.
func NewTileCache(gen Generator, bounds image.Rectangle, tileW, tileH, capacity int) *TileCache {
	return &TileCache{
		gen:    gen,
		bounds: bounds,
		tileW:  tileW,
		tileH:  tileH,
		tiles:  lru.New(capacity),
	}
}

// Fetch produces the pixels for rect, reading whole tiles through the cache
// and copying the overlapping parts into the result.
func (c *TileCache) Fetch(rect image.Rectangle) (*Region, error) {
	if err := checkRect(rect, c.bounds); err != nil {
		return nil, err
	}
	out := NewRegion(rect)
	for row := rect.Min.Y / c.tileH; row <= (rect.Max.Y-1)/c.tileH; row++ {
		for col := rect.Min.X / c.tileW; col <= (rect.Max.X-1)/c.tileW; col++ {
			tile, err := c.tile(col, row)
			if err != nil {
				return nil, err
			}
			copyInto(out, tile)
		}
	}
	return out, nil
}

// Len returns the number of resident tiles.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tiles.Len()
}

func (c *TileCache) tile(col, row int) (*Region, error) {
	key := tileKey{col, row}
	c.mu.Lock()
	if v, ok := c.tiles.Get(key); ok {
		c.mu.Unlock()
		return v.(*Region), nil
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do(fmt.Sprintf("%d,%d", col, row), func() (any, error) {
		// Edge tiles are clipped to the image bounds.
		tr := image.Rect(col*c.tileW, row*c.tileH, (col+1)*c.tileW, (row+1)*c.tileH).
			Intersect(c.bounds)
		reg := NewRegion(tr)
		if err := c.gen(reg); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tiles.Add(key, reg)
		c.mu.Unlock()
		return reg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Region), nil
}
