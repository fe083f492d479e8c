package gradient

import "image"

// Sink receives generated textures. Replace hands over a new image for slot
// and must dispose whatever the slot held before; Dispose frees the slot.
type Sink interface {
	Replace(slot int, img *image.RGBA)
	Dispose(slot int)
}

// cacheKey captures every input of Generate so entries compare by value.
type cacheKey struct {
	shape Shape
	n     int
	stops [MaxStops]Stop
	light Light
	size  int
}

func makeKey(def Definition, light Light, size int) cacheKey {
	k := cacheKey{shape: def.Shape, n: len(def.Stops), light: light, size: size}
	copy(k.stops[:], def.Stops)
	return k
}

type cacheEntry struct {
	key   cacheKey
	img   *image.RGBA
	valid bool
}

// Cache keeps one generated texture per gradient slot and regenerates a slot
// only when its inputs change or it was invalidated.
type Cache struct {
	size    int
	sink    Sink
	entries []cacheEntry

	generated int
}

// NewCache creates a cache producing size x size textures. sink may be nil.
func NewCache(size int, sink Sink) *Cache {
	if size <= 0 {
		size = DefaultTextureSize
	}
	return &Cache{size: size, sink: sink}
}

// Sync brings every slot in line with defs and light, returning how many
// textures were regenerated. Slots beyond len(defs) are disposed.
func (c *Cache) Sync(defs []Definition, light Light) int {
	for len(c.entries) > len(defs) {
		last := len(c.entries) - 1
		c.dispose(last)
		c.entries = c.entries[:last]
	}
	for len(c.entries) < len(defs) {
		c.entries = append(c.entries, cacheEntry{})
	}

	regenerated := 0
	for i, def := range defs {
		key := makeKey(def, light, c.size)
		e := &c.entries[i]
		if e.valid && e.key == key {
			continue
		}
		e.img = Generate(def, light, c.size)
		e.key = key
		e.valid = true
		if c.sink != nil {
			c.sink.Replace(i, e.img)
		}
		regenerated++
	}
	c.generated += regenerated
	return regenerated
}

// SetSize changes the texture size; every slot regenerates on the next Sync.
func (c *Cache) SetSize(size int) {
	if size <= 0 || size == c.size {
		return
	}
	c.size = size
	c.InvalidateAll()
}

// Image returns the texture of slot, or nil if it was never generated.
func (c *Cache) Image(slot int) *image.RGBA {
	if slot < 0 || slot >= len(c.entries) {
		return nil
	}
	return c.entries[slot].img
}

// Invalidate forces slot to regenerate on the next Sync.
func (c *Cache) Invalidate(slot int) {
	if slot >= 0 && slot < len(c.entries) {
		c.entries[slot].valid = false
	}
}

// InvalidateAll forces every slot to regenerate on the next Sync.
func (c *Cache) InvalidateAll() {
	for i := range c.entries {
		c.entries[i].valid = false
	}
}

// Release disposes every slot.
func (c *Cache) Release() {
	for i := range c.entries {
		c.dispose(i)
	}
	c.entries = c.entries[:0]
}

// Generated returns the total number of textures produced.
func (c *Cache) Generated() int { return c.generated }

// Len returns the number of slots.
func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) dispose(slot int) {
	e := &c.entries[slot]
	if e.img != nil && c.sink != nil {
		c.sink.Dispose(slot)
	}
	e.img = nil
	e.valid = false
}
