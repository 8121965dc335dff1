package board

import (
	"refboard/internal/drawlist"
	refimage "refboard/internal/image"

	"github.com/google/uuid"
)

// RenderableFactory creates the host's renderable handle for an image,
// sized to its native pixel dimensions.
type RenderableFactory interface {
	NewRenderable(img *refimage.Image) drawlist.Texture
}

// RenderableFactoryFunc adapts a function to RenderableFactory.
type RenderableFactoryFunc func(img *refimage.Image) drawlist.Texture

// NewRenderable calls f(img).
func (f RenderableFactoryFunc) NewRenderable(img *refimage.Image) drawlist.Texture {
	return f(img)
}

// renderCache memoizes renderables by image identity. It is filled while
// drawing and only emptied by clear.
type renderCache struct {
	factory RenderableFactory
	entries map[uuid.UUID]drawlist.Texture
}

func newRenderCache(factory RenderableFactory) *renderCache {
	return &renderCache{
		factory: factory,
		entries: make(map[uuid.UUID]drawlist.Texture),
	}
}

// get returns the cached renderable for img, creating it on a miss.
func (c *renderCache) get(img *refimage.Image) drawlist.Texture {
	if tex, ok := c.entries[img.ID]; ok {
		return tex
	}
	tex := c.factory.NewRenderable(img)
	if tex != nil {
		c.entries[img.ID] = tex
	}
	return tex
}

func (c *renderCache) reset() {
	clear(c.entries)
}

// prune drops entries for which keep returns false.
func (c *renderCache) prune(keep func(uuid.UUID) bool) int {
	n := 0
	for id := range c.entries {
		if !keep(id) {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

func (c *renderCache) size() int {
	return len(c.entries)
}
