// Command autocropscans splits flatbed scans of loose photos into
// individual jpeg files. It picks up SCAN_*.png and *.tif files in the
// given directory and writes the cropped photos to an autocropped/
// subdirectory.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/infothrill/go-clitools/internal/scans"
	"github.com/infothrill/go-clitools/internal/version"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "autocropscans")
		return 0
	}

	fs := flag.NewFlagSet("autocropscans", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	blank := fs.String("blank", "", "scan taken with the scanner empty, used as background reference")
	dpi := fs.Int("dpi", 600, "scan resolution")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "error: no scan directory specified")
		printUsage(stderr)
		return 2
	}

	var background scans.Background
	haveBlank := false
	if *blank != "" {
		img, err := imaging.Open(*blank)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		background = scans.BackgroundFromImage(img)
		haveBlank = true
	}

	exitCode := 0
	for _, dir := range fs.Args() {
		if err := processDir(dir, background, haveBlank, *dpi, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			exitCode = 1
		}
	}
	return exitCode
}

func processDir(dir string, background scans.Background, haveBlank bool, dpi int, stdout, stderr io.Writer) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && scans.IsScanFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		fmt.Fprintf(stdout, "%s: no scan files found\n", dir)
		return nil
	}

	outDir := filepath.Join(dir, "autocropped")
	ok := true
	for _, name := range files {
		path := filepath.Join(dir, name)
		bg := background
		if !haveBlank {
			img, err := imaging.Open(path)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				ok = false
				continue
			}
			bg = scans.BackgroundFromBorder(img)
		}
		written, err := scans.Process(path, outDir, bg, dpi)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			ok = false
			continue
		}
		for _, w := range written {
			fmt.Fprintf(stdout, "%s -> %s\n", path, w)
		}
	}
	if !ok {
		return fmt.Errorf("%s: some scans failed", dir)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  autocropscans [-blank BLANK.png] [-dpi 600] DIR [DIR...]\n\nSegments SCAN_*.png and *.tif files against the scanner background and\nwrites each detected photo as a jpeg into DIR/autocropped. Without\n-blank the background is sampled from the scan borders.")
}
