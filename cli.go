package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"linediff/render"
	"linediff/text"
	"linediff/utils"
)

// Exit codes of the diff mode, as with diff(1).
const (
	exitSame    = 0
	exitDiffer  = 1
	exitTrouble = 2
)

type diffFlags struct {
	format  string
	context int
	width   int
	ignore  bool
	moves   bool
	chars   bool
	timeout time.Duration
}

func newDiffFlagSet(stderr io.Writer, f *diffFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.format, "format", "unified", "output `format`: unified, side, patch or json")
	fs.IntVar(&f.context, "U", 3, "number of unified context `lines`")
	fs.IntVar(&f.width, "width", 0, "column `width` of each side in side format, 0 to fit the terminal")
	fs.BoolVar(&f.ignore, "w", false, "ignore leading and trailing whitespace")
	fs.BoolVar(&f.moves, "moves", false, "detect moved blocks")
	fs.BoolVar(&f.chars, "chars", true, "compute character changes")
	fs.DurationVar(&f.timeout, "timeout", 5*time.Second, "computation time `budget`, 0 for none")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: linediff --diff [flags] ORIGINAL MODIFIED\n\n")
		fs.PrintDefaults()
	}
	return fs
}

// runDiff compares two files and writes the rendered diff to stdout. It
// returns the process exit code.
func runDiff(args []string, stdout, stderr io.Writer) int {
	var f diffFlags
	fs := newDiffFlagSet(stderr, &f)
	if err := fs.Parse(args); err != nil {
		return exitTrouble
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return exitTrouble
	}

	if f.width <= 0 {
		f.width = sideWidth(detectTerminalWidth(stdout))
	}

	differ, err := diffFiles(stdout, fs.Arg(0), fs.Arg(1), f)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "linediff: %v\n", err)
		return exitTrouble
	}
	if differ {
		return exitDiffer
	}
	return exitSame
}

const defaultTerminalWidth = 163

func detectTerminalWidth(out io.Writer) int {
	if outFile, ok := out.(*os.File); ok && outFile != nil {
		fd := int(outFile.Fd())
		if term.IsTerminal(fd) {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				return w
			}
		}
	}
	if cols := strings.TrimSpace(os.Getenv("COLUMNS")); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	return defaultTerminalWidth
}

// sideWidth splits a terminal row into two columns around the 3-cell marker.
func sideWidth(total int) int {
	return max((total-3)/2, 1)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return utils.SplitLines(string(data)), nil
}

func diffFiles(w io.Writer, originalPath, modifiedPath string, f diffFlags) (bool, error) {
	original, err := readLines(originalPath)
	if err != nil {
		return false, err
	}
	modified, err := readLines(modifiedPath)
	if err != nil {
		return false, err
	}

	result := text.ComputeDiff(context.Background(), original, modified, text.Options{
		IgnoreTrimWhitespace: f.ignore,
		MaxComputationTime:   f.timeout,
		ComputeMoves:         f.moves,
		ComputeCharChanges:   f.chars,
	})
	differ := len(result.Hunks()) > 0

	var out string
	switch f.format {
	case "unified":
		out = render.Unified(result, original, modified, render.UnifiedOptions{
			FromFile: originalPath,
			ToFile:   modifiedPath,
			Context:  f.context,
		})
	case "side":
		out = render.SideBySide(result, original, modified, f.width)
	case "patch":
		out = render.Patch(result, original, modified)
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return false, errors.Wrap(err, "encode result")
		}
		out = string(data) + "\n"
	default:
		return false, errors.Errorf("unknown format %q", f.format)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return false, errors.Wrap(err, "write diff")
	}
	return differ, nil
}
