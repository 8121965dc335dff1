// Package main provides the entry point for the RefBoard application.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"refboard/internal/app"
	"refboard/internal/config"
	"refboard/internal/layout"
	"refboard/internal/logging"
	"refboard/internal/render"
	"refboard/internal/version"
	"refboard/ui/mainwindow"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
)

const appID = "io.github.refboard"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config.toml")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [layout.json | image...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log := logging.Setup(os.Stderr, logrus.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Warn("using default configuration")
		cfg = config.Default()
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		log.WithError(err).Warn("falling back to info logging")
	}
	log.SetLevel(level)
	log.WithField("config", cfg.Path()).Info(version.String())

	rasterizer, err := render.NewRasterizer()
	if err != nil {
		log.Fatal(err)
	}

	state := app.NewState(cfg, render.NewFactory(log.WithField("prefix", "render")), log)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.RefBoardTheme{})

	win := mainwindow.New(fyneApp, state, rasterizer, log)
	win.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))

	openArgs(state, flag.Args(), log)

	win.ShowAndRun()
}

// openArgs loads a layout file or imports images named on the command line.
func openArgs(state *app.State, args []string, log logrus.FieldLogger) {
	var images []string
	for _, arg := range args {
		if strings.EqualFold(filepath.Ext(arg), layout.Ext) {
			if err := state.LoadLayout(arg); err != nil {
				log.WithError(err).WithField("path", arg).Error("failed to load layout")
			}
			continue
		}
		images = append(images, arg)
	}
	if len(images) > 0 {
		// Failures are logged by the import itself.
		state.ImportImages(images...)
	}
}
