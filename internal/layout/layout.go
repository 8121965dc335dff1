// Package layout saves and restores board layouts as JSON files.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"refboard/internal/board"
	"refboard/internal/config"
	refimage "refboard/internal/image"
	"refboard/internal/view"
	"refboard/pkg/geometry"

	"github.com/sirupsen/logrus"
)

const (
	// Version is the layout format written by Save.
	Version = 1

	// Ext is the layout file extension.
	Ext = ".json"

	// DefaultCanvasSize is the canvas extent recorded for new layouts.
	DefaultCanvasSize = 2000.0
)

// ErrVersion is returned by Load for files written by a newer format.
var ErrVersion = errors.New("unsupported layout version")

// File is a saved board layout.
type File struct {
	Version     int           `json:"version"`
	Name        string        `json:"name"`
	Created     time.Time     `json:"created"`
	Modified    time.Time     `json:"modified"`
	CanvasSize  geometry.Size `json:"canvas_size"`
	GridSize    float64       `json:"grid_size"`
	GridEnabled bool          `json:"grid_enabled"`
	View        View          `json:"view"`
	Images      []Entry       `json:"images"`
}

// View is the saved view transform.
type View struct {
	Offset geometry.Point2D `json:"offset"`
	Zoom   float64          `json:"zoom"`
}

// Entry is one placed image. Path is relative to the layout file when the
// image lives below the layout's directory tree.
type Entry struct {
	Path     string           `json:"path"`
	Name     string           `json:"name"`
	Position geometry.Point2D `json:"position"`
	Size     geometry.Size    `json:"size"`
	Rotation float64          `json:"rotation"`
	Opacity  float64          `json:"opacity"`
	Locked   bool             `json:"locked"`
	Visible  bool             `json:"visible"`
}

// UnmarshalJSON decodes an entry, keeping an image opaque and visible when
// the file leaves those fields out.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	p := plain{Opacity: 1, Visible: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Loader decodes the image at path.
type Loader func(path string) (*refimage.Image, error)

// New creates an empty layout with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:     Version,
		Name:        name,
		Created:     now,
		Modified:    now,
		CanvasSize:  geometry.NewSize(DefaultCanvasSize, DefaultCanvasSize),
		GridSize:    board.DefaultGridSize,
		GridEnabled: true,
		View:        View{Zoom: 1},
	}
}

// DefaultDir returns the directory layouts are saved to by default.
func DefaultDir() string {
	return filepath.Join(config.Dir(), "layouts")
}

// List returns the layout files in dir, sorted by name. A missing
// directory has no layouts.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// Load reads a layout file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	// Fields missing from a hand-edited file keep New's defaults.
	f := New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	f.Version = 0
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	if f.Version < 1 || f.Version > Version {
		return nil, fmt.Errorf("%s: %w %d", path, ErrVersion, f.Version)
	}
	return f, nil
}

// Save writes the layout to path, creating its directory.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}

// FromBoard captures the board's images, grid and view for saving at
// layoutPath. Images without a source file cannot be restored and are left
// out.
func FromBoard(b *board.Board, name, layoutPath string) *File {
	f := New(name)
	f.GridSize = b.GridSize()
	f.GridEnabled = b.GridEnabled()
	v := b.View()
	f.View = View{Offset: v.Offset, Zoom: v.Zoom}

	for _, img := range b.Images() {
		if img.Path == "" {
			continue
		}
		f.Images = append(f.Images, Entry{
			Path:     relativePath(layoutPath, img.Path),
			Name:     img.Name,
			Position: img.Position,
			Size:     img.Size,
			Rotation: img.Rotation,
			Opacity:  img.Opacity,
			Locked:   img.Locked,
			Visible:  img.Visible,
		})
	}
	return f
}

// ImagePath returns the absolute path of an entry's image.
func ImagePath(layoutPath string, e Entry) string {
	if filepath.IsAbs(e.Path) {
		return e.Path
	}
	return filepath.Join(filepath.Dir(layoutPath), e.Path)
}

// Apply replaces the board's contents with the layout. Images that fail to
// load are skipped with a warning. It returns the number of images restored.
func (f *File) Apply(b *board.Board, layoutPath string, load Loader, log logrus.FieldLogger) int {
	if load == nil {
		load = refimage.Load
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	b.Clear()
	b.SetGridSize(f.GridSize)
	b.SetGridEnabled(f.GridEnabled)
	zoom := f.View.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	b.SetView(view.Transform{Offset: f.View.Offset, Zoom: zoom})

	restored := 0
	for _, e := range f.Images {
		path := ImagePath(layoutPath, e)
		img, err := load(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping layout image")
			continue
		}
		if e.Name != "" {
			img.Name = e.Name
		}
		img.Position = e.Position
		img.SetSize(e.Size)
		img.Rotation = e.Rotation
		img.SetOpacity(e.Opacity)
		img.Locked = e.Locked
		img.Visible = e.Visible
		b.AddImage(img)
		restored++
	}

	log.WithFields(logrus.Fields{
		"layout":   f.Name,
		"restored": restored,
		"total":    len(f.Images),
	}).Info("layout applied")
	return restored
}

func relativePath(layoutPath, imagePath string) string {
	rel, err := filepath.Rel(filepath.Dir(layoutPath), imagePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		abs, err := filepath.Abs(imagePath)
		if err != nil {
			return imagePath
		}
		return abs
	}
	return rel
}
