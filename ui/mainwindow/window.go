// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strconv"

	"refboard/internal/app"
	"refboard/internal/board"
	refimage "refboard/internal/image"
	"refboard/internal/layout"
	"refboard/internal/render"
	"refboard/internal/version"
	"refboard/internal/view"
	"refboard/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.BoardWidget
	statusBar *widget.Label

	// Toolbar controls synced from board state
	toolRadio *widget.RadioGroup
	gridCheck *widget.Check
	gridEntry *widget.Entry

	log logrus.FieldLogger
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, rasterizer *render.Rasterizer, log logrus.FieldLogger) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		log:    log,
	}

	mw.canvas = canvas.NewBoardWidget(state.Board, rasterizer, log.WithField("prefix", "canvas"))
	mw.canvas.OnChanged(mw.syncControls)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.SetOnDropped(mw.onDropped)
	mw.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")

	content := container.NewBorder(
		mw.createToolbar(),                // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.canvas,                         // center
	)

	mw.SetContent(content)
	mw.syncControls()
}

// createToolbar creates the import, tool and grid controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	importBtn := widget.NewButton("Import", mw.onImport)
	clearBtn := widget.NewButton("Clear", mw.onClear)

	var names []string
	for _, t := range board.Tools() {
		names = append(names, t.String())
	}
	mw.toolRadio = widget.NewRadioGroup(names, func(selected string) {
		if tool, ok := board.ParseTool(selected); ok {
			mw.state.SetTool(tool)
			mw.canvas.Update()
		}
	})
	mw.toolRadio.Horizontal = true
	mw.toolRadio.Required = true

	mw.gridCheck = widget.NewCheck("Grid", func(on bool) {
		mw.state.SetGridEnabled(on)
		mw.canvas.Update()
	})

	mw.gridEntry = widget.NewEntry()
	mw.gridEntry.OnSubmitted = mw.onGridSize

	saveBtn := widget.NewButton("Save Layout", mw.onSaveLayout)
	loadBtn := widget.NewButton("Load Layout", mw.onOpenLayout)

	return container.NewHBox(
		importBtn,
		clearBtn,
		widget.NewSeparator(),
		mw.toolRadio,
		widget.NewSeparator(),
		mw.gridCheck,
		widget.NewLabel("Size:"),
		container.NewGridWrap(fyne.NewSize(60, mw.gridEntry.MinSize().Height), mw.gridEntry),
		widget.NewSeparator(),
		saveBtn,
		loadBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Import Image...", mw.onImport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Layout...", mw.onOpenLayout),
		fyne.NewMenuItem("Save Layout", mw.onSaveLayout),
		fyne.NewMenuItem("Save Layout As...", mw.onSaveLayoutAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Board", mw.onClear),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Reset View", mw.onResetView),
		fyne.NewMenuItem("Toggle Grid", func() {
			mw.state.SetGridEnabled(!mw.state.Board.GridEnabled())
			mw.syncControls()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Release Unused Textures", mw.onPruneCache),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImagesImported, func(data interface{}) {
		if imgs, ok := data.([]*refimage.Image); ok {
			mw.updateStatus(fmt.Sprintf("Imported %d image(s)", len(imgs)))
		}
		mw.canvas.Update()
	})

	mw.state.On(app.EventBoardCleared, func(interface{}) {
		mw.updateStatus("Board cleared")
		mw.canvas.Update()
	})

	mw.state.On(app.EventLayoutLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(version.Name + " - " + filepath.Base(path))
			mw.updateStatus("Layout loaded: " + path)
		}
		mw.syncControls()
		mw.canvas.Update()
	})

	mw.state.On(app.EventLayoutSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(version.Name + " - " + filepath.Base(path))
			mw.updateStatus("Layout saved: " + path)
		}
	})

	mw.state.On(app.EventLayoutChangedOnDisk, func(data interface{}) {
		path, _ := data.(string)
		dialog.ShowConfirm("Layout Changed",
			filepath.Base(path)+" was changed outside RefBoard. Reload it?",
			func(reload bool) {
				if reload {
					mw.loadLayout(path)
				}
			}, mw.Window)
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

// syncControls reflects board state in the toolbar and status bar.
func (mw *MainWindow) syncControls() {
	b := mw.state.Board
	if mw.toolRadio != nil && mw.toolRadio.Selected != b.Tool().String() {
		mw.toolRadio.SetSelected(b.Tool().String())
	}
	if mw.gridCheck != nil && mw.gridCheck.Checked != b.GridEnabled() {
		mw.gridCheck.SetChecked(b.GridEnabled())
	}
	if mw.gridEntry != nil {
		mw.gridEntry.SetText(strconv.FormatFloat(b.GridSize(), 'f', -1, 64))
	}
	if mw.statusBar != nil {
		mw.updateStatus(mw.describe())
	}
}

// describe summarizes the board for the status bar.
func (mw *MainWindow) describe() string {
	b := mw.state.Board
	text := fmt.Sprintf("%s | zoom %.0f%% | %d image(s), %d selected",
		b.Tool(), b.View().Zoom*100, len(b.Images()), len(b.Selected()))
	if label := b.Measurement().Label(); label != "" && b.Tool() == board.ToolMeasure {
		text += " | " + label
	}
	return text
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.state.Config.LastDirectory
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// layoutDir returns the saved-layouts directory as a ListableURI, or nil.
func (mw *MainWindow) layoutDir() fyne.ListableURI {
	listable, err := storage.ListerForURI(storage.NewFileURI(layout.DefaultDir()))
	if err != nil {
		return nil
	}
	return listable
}

// Action handlers

func (mw *MainWindow) onImport() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.importPaths(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(refimage.SupportedFormats()))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	var paths []string
	for _, u := range uris {
		if u.Scheme() == "file" {
			paths = append(paths, u.Path())
		}
	}
	mw.importPaths(paths...)
}

func (mw *MainWindow) importPaths(paths ...string) {
	if _, err := mw.state.ImportImages(paths...); err != nil {
		dialog.ShowError(err, mw.Window)
	}
	mw.syncControls()
}

func (mw *MainWindow) onClear() {
	if len(mw.state.Board.Images()) == 0 {
		return
	}
	dialog.ShowConfirm("Clear Board", "Remove all images from the board?", func(ok bool) {
		if ok {
			mw.state.ClearBoard()
			mw.syncControls()
		}
	}, mw.Window)
}

func (mw *MainWindow) onGridSize(text string) {
	size, err := strconv.ParseFloat(text, 64)
	if err == nil {
		err = mw.state.SetGridSize(size)
	}
	if err != nil {
		dialog.ShowError(fmt.Errorf("invalid grid size %q: %w", text, err), mw.Window)
	}
	mw.syncControls()
	mw.canvas.Update()
}

func (mw *MainWindow) onOpenLayout() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.loadLayout(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{layout.Ext}))
	if loc := mw.layoutDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) loadLayout(path string) {
	if err := mw.state.LoadLayout(path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveLayout() {
	path := mw.state.CurrentLayout()
	if path == "" {
		mw.onSaveLayoutAs()
		return
	}
	if err := mw.state.SaveLayout(path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveLayoutAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		if err := mw.state.SaveLayout(writer.URI().Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("layout" + layout.Ext)
	if loc := mw.layoutDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onResetView() {
	mw.state.Board.SetView(view.New())
	mw.canvas.Update()
	mw.syncControls()
}

func (mw *MainWindow) onPruneCache() {
	n := mw.state.Board.PruneCache()
	mw.updateStatus(fmt.Sprintf("Released %d texture(s)", n))
}

func (mw *MainWindow) onClose() {
	if err := mw.state.Close(); err != nil {
		mw.log.WithError(err).Warn("shutdown")
	}
	mw.Close()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s v%s\n\n"+
			"A canvas for arranging reference images.\n\n"+
			"Middle-drag to pan, Ctrl+wheel to zoom.\n"+
			"G grid, M measure, Esc select, 1-9 opacity, Delete remove.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Name, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
