// Command refrender renders a saved board layout to a PNG without a window.
package main

import (
	"flag"
	"fmt"
	"os"

	"refboard/internal/board"
	"refboard/internal/config"
	"refboard/internal/layout"
	"refboard/internal/logging"
	"refboard/internal/render"
	"refboard/internal/version"

	"github.com/sirupsen/logrus"
)

func main() {
	layoutPath := flag.String("layout", "", "Path to a layout .json file")
	outPath := flag.String("o", "board.png", "Output PNG path")
	width := flag.Int("width", int(board.DefaultDesiredSize.Width), "Viewport width in pixels")
	height := flag.Int("height", int(board.DefaultDesiredSize.Height), "Viewport height in pixels")
	grid := flag.Bool("grid", true, "Draw the grid when the layout has it enabled")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *layoutPath == "" {
		fmt.Println("Usage: refrender -layout <layout.json> [-o board.png] [-width 800] [-height 600]")
		os.Exit(1)
	}

	level := logrus.InfoLevel
	if *verbose {
		level = logrus.DebugLevel
	}
	log := logging.Setup(os.Stderr, level)
	log.Debug(version.String())

	f, err := layout.Load(*layoutPath)
	if err != nil {
		log.Fatal(err)
	}

	opts := config.Default().BoardOptions(log.WithField("prefix", "board"))
	b := board.New(opts, render.NewFactory(log.WithField("prefix", "render")))
	n := f.Apply(b, *layoutPath, nil, log)
	if !*grid {
		b.SetGridEnabled(false)
	}

	rasterizer, err := render.NewRasterizer()
	if err != nil {
		log.Fatal(err)
	}
	img := rasterizer.Rasterize(b.Draw(float64(*width), float64(*height)))
	if err := render.SavePNG(*outPath, img); err != nil {
		log.Fatal(err)
	}

	log.WithFields(logrus.Fields{
		"images": n,
		"output": *outPath,
		"width":  *width,
		"height": *height,
	}).Info("rendered layout")
}
