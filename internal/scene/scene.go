// Package scene holds the ordered list of placed images and the selection.
package scene

import (
	"slices"

	refimage "refboard/internal/image"
	"refboard/pkg/geometry"

	"github.com/google/uuid"
)

// Scene owns the placed images, bottom-most first, and the subset of them
// that is selected. The selection always equals the set of images whose
// Selected flag is set, and never holds an image absent from the scene.
type Scene struct {
	images   []*refimage.Image
	selected []*refimage.Image
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends an image on top of the stack. Nil images and images already in
// the scene are ignored. The image's Selected flag is honoured.
func (s *Scene) Add(img *refimage.Image) bool {
	if img == nil || s.Contains(img) {
		return false
	}
	s.images = append(s.images, img)
	if img.Selected {
		s.selected = append(s.selected, img)
	}
	return true
}

// Remove deletes an image from the scene and the selection.
func (s *Scene) Remove(img *refimage.Image) bool {
	i := slices.Index(s.images, img)
	if i < 0 {
		return false
	}
	s.images = slices.Delete(s.images, i, i+1)
	s.unselect(img)
	return true
}

// Clear removes every image.
func (s *Scene) Clear() {
	s.ClearSelection()
	s.images = nil
}

// Images returns the images, bottom-most first. The slice must not be modified.
func (s *Scene) Images() []*refimage.Image {
	return s.images
}

// Selected returns the selected images in selection order. The slice must
// not be modified.
func (s *Scene) Selected() []*refimage.Image {
	return s.selected
}

// Len returns the number of images.
func (s *Scene) Len() int {
	return len(s.images)
}

// Contains reports whether img is in the scene.
func (s *Scene) Contains(img *refimage.Image) bool {
	return slices.Contains(s.images, img)
}

// Find returns the image with the given identity, or nil.
func (s *Scene) Find(id uuid.UUID) *refimage.Image {
	for _, img := range s.images {
		if img.ID == id {
			return img
		}
	}
	return nil
}

// HitTest returns the top-most visible image containing p, or nil.
// Locked images are hit-testable.
func (s *Scene) HitTest(p geometry.Point2D) *refimage.Image {
	for i := len(s.images) - 1; i >= 0; i-- {
		img := s.images[i]
		if img.Visible && img.HitTest(p) {
			return img
		}
	}
	return nil
}

// Select toggles img's selection. Without multi the previous selection is
// cleared first, so a plain click always leaves img selected.
func (s *Scene) Select(img *refimage.Image, multi bool) {
	if !s.Contains(img) {
		return
	}
	if !multi {
		s.ClearSelection()
	}

	img.Selected = !img.Selected
	if img.Selected {
		s.selected = append(s.selected, img)
	} else {
		s.unselect(img)
	}
}

// ClearSelection deselects every image.
func (s *Scene) ClearSelection() {
	for _, img := range s.images {
		img.Selected = false
	}
	s.selected = nil
}

// DeleteSelected removes every selected, unlocked image and empties the
// selection. It returns the removed images.
func (s *Scene) DeleteSelected() []*refimage.Image {
	var removed []*refimage.Image
	s.images = slices.DeleteFunc(s.images, func(img *refimage.Image) bool {
		if img.Selected && !img.Locked {
			removed = append(removed, img)
			return true
		}
		return false
	})
	for _, img := range removed {
		img.Selected = false
	}
	s.ClearSelection()
	return removed
}

// SetSelectedOpacity sets the opacity of every selected, unlocked image.
func (s *Scene) SetSelectedOpacity(opacity float64) int {
	n := 0
	for _, img := range s.selected {
		if img.Locked {
			continue
		}
		img.SetOpacity(opacity)
		n++
	}
	return n
}

// Positions returns the current position of every selected image, keyed by
// identity.
func (s *Scene) Positions() map[uuid.UUID]geometry.Point2D {
	positions := make(map[uuid.UUID]geometry.Point2D, len(s.selected))
	for _, img := range s.selected {
		positions[img.ID] = img.Position
	}
	return positions
}

// PlaceSelected moves every selected, unlocked image to origin+delta, where
// origin is its entry in origins. Images without an origin are left alone.
// delta is the whole drag so far, not the last step; snapping each step would
// lose sub-cell motion and pin images to their cell.
func (s *Scene) PlaceSelected(origins map[uuid.UUID]geometry.Point2D, delta geometry.Point2D, gridSize float64) int {
	n := 0
	for _, img := range s.selected {
		origin, ok := origins[img.ID]
		if img.Locked || !ok {
			continue
		}
		img.Position = origin.Add(delta).Snap(gridSize)
		n++
	}
	return n
}

func (s *Scene) unselect(img *refimage.Image) {
	img.Selected = false
	s.selected = slices.DeleteFunc(s.selected, func(sel *refimage.Image) bool {
		return sel == img
	})
}
