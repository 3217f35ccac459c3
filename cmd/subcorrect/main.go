// Command subcorrect corrects Sanskrit/Hindi terminology in ASR-generated
// subtitle files: tool input.srt output.srt [--lexicons DIR] [--config
// FILE] [--metadata FILE] [--verbose] [--report PATH].
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dharmapada/subcorrect/internal/config"
	"github.com/dharmapada/subcorrect/internal/correct"
	"github.com/dharmapada/subcorrect/internal/correct/asrpattern"
	"github.com/dharmapada/subcorrect/internal/correct/context"
	"github.com/dharmapada/subcorrect/internal/correct/fuzzy"
	"github.com/dharmapada/subcorrect/internal/correct/phrase"
	"github.com/dharmapada/subcorrect/internal/lexicon"
	"github.com/dharmapada/subcorrect/internal/report"
	"github.com/dharmapada/subcorrect/internal/subtitle"
)

// Exit codes, spec.md §6 "CLI surface".
const (
	exitOK                = 0
	exitGeneralFailure    = 1
	exitInputNotFound     = 2
	exitOutputNotWritable = 3
	exitLexiconLoadFailed = 4
)

// lexiconDirEnvVar is the optional environment variable naming an alternate
// lexicon directory (spec.md §6 "Environment variables").
const lexiconDirEnvVar = "SUBCORRECT_LEXICON_DIR"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("subcorrect", flag.ContinueOnError)
	lexiconsDir := fs.String("lexicons", "lexicons", "directory holding the tabular lexicon store and overlay files")
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	metadataPath := fs.String("metadata", "", "path to an optional LID metadata file")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	reportPath := fs.String("report", "", "path to write a structured JSON quality report")
	if err := fs.Parse(args); err != nil {
		return exitGeneralFailure
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: subcorrect input.srt output.srt [--lexicons DIR] [--config FILE] [--metadata FILE] [--verbose] [--report PATH]")
		return exitGeneralFailure
	}
	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	if dir := os.Getenv(lexiconDirEnvVar); dir != "" {
		*lexiconsDir = dir
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configPath, "err", err)
		return exitGeneralFailure
	}

	lid, err := loadLID(*metadataPath)
	if err != nil {
		slog.Warn("failed to load lid metadata, proceeding without lid-aware routing", "path", *metadataPath, "err", err)
	}

	inFile, err := os.Open(inputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Error("input file not found", "path", inputPath)
			return exitInputNotFound
		}
		slog.Error("failed to open input file", "path", inputPath, "err", err)
		return exitInputNotFound
	}
	defer inFile.Close()

	parseStart := time.Now()
	segments, err := subtitle.Read(inFile)
	parseElapsed := time.Since(parseStart)
	if err != nil {
		slog.Error("failed to parse input file", "path", inputPath, "err", err)
		return exitInputNotFound
	}

	driver, degraded, err := buildDriver(*lexiconsDir, cfg, lid)
	if err != nil {
		slog.Error("failed to load lexicon", "dir", *lexiconsDir, "err", err)
		return exitLexiconLoadFailed
	}
	if degraded {
		slog.Warn("lexicon tabular store unavailable, running in degraded overlay-only mode", "dir", *lexiconsDir)
	}

	correctStart := time.Now()
	result := driver.ProcessFile(segments, nil)
	correctElapsed := time.Since(correctStart)

	outFile, err := os.Create(outputPath)
	if err != nil {
		slog.Error("output path not writable", "path", outputPath, "err", err)
		return exitOutputNotWritable
	}
	defer outFile.Close()

	writeStart := time.Now()
	writeErr := subtitle.Write(outFile, result.Segments)
	writeElapsed := time.Since(writeStart)
	if writeErr != nil {
		slog.Error("failed to write output file", "path", outputPath, "err", writeErr)
		return exitOutputNotWritable
	}

	timings := report.PhaseTimings{Parse: parseElapsed, Correct: correctElapsed, Write: writeElapsed}
	rpt := report.Build(result, cfg.QA, timings, time.Now())
	emitReport(rpt, *reportPath)

	return exitOK
}

// buildDriver loads the lexicon store from dir and wires every correction
// component into a [correct.Driver]. The returned bool reports whether the
// store loaded in degraded (overlay-only) mode; that alone is never a fatal
// error (spec.md §7 "data errors ... fall back to the degraded
// configuration"). A non-nil error means the tabular store exists but could
// not be used (its schema_version is newer than supported, or its rows could
// not be queried), which the caller surfaces as exit code 4. Malformed
// overlay files are logged and skipped, never fatal.
func buildDriver(dir string, cfg *config.Config, lid correct.LIDMap) (*correct.Driver, bool, error) {
	storeRows, available, err := lexicon.OpenTabularStore(filepath.Join(dir, "lexicon.db"))
	if err != nil {
		return nil, false, fmt.Errorf("open tabular store: %w", err)
	}

	overlayPaths, err := overlayFilePaths(dir)
	if err != nil {
		slog.Warn("failed to scan lexicon directory for overlays", "dir", dir, "err", err)
	}
	overlayRows, overlayErrs := lexicon.LoadOverlays(overlayPaths)
	for _, oe := range overlayErrs {
		slog.Warn("skipping malformed overlay file", "err", oe)
	}

	bl := lexicon.DefaultBlocklist()
	store, loadErr := lexicon.Load(storeRows, overlayRows, available, bl)
	degraded := store != nil && store.Degraded
	if store == nil {
		return nil, false, loadErr
	}

	fz := fuzzy.New(bl, cfg.Caching.MaxCorrections)
	asr := asrpattern.New(bl)
	classifier := context.New(cfg.ContextDetection, cfg.Caching.MaxCorrections)
	pm := phrase.New(compoundsFromRows(append(storeRows, overlayRows...)), phrase.DefaultMantras(), fz)

	var opts []correct.Option
	if lid != nil {
		opts = append(opts, correct.WithLID(lid))
	}
	return correct.New(store, bl, pm, classifier, fz, asr, cfg, opts...), degraded, nil
}

// overlayFilePaths returns every *.yaml file directly under dir, the
// lexicon overlay file convention of spec.md §6. A missing directory
// yields an empty, non-fatal result.
func overlayFilePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// compoundsFromRows extracts the phrase matcher's compound-title list from
// every lexicon row marked is_compound, one [phrase.CompoundEntry] per
// surface form (the original term plus each variation) so that any spelling
// ASR produced can trigger the replacement (spec.md §4.F).
func compoundsFromRows(rows []lexicon.Row) []phrase.CompoundEntry {
	var out []phrase.CompoundEntry
	for _, row := range rows {
		if !row.IsCompound {
			continue
		}
		out = append(out, phrase.CompoundEntry{Canonical: row.Transliteration, Surface: row.OriginalTerm})
		for _, v := range row.Variations {
			out = append(out, phrase.CompoundEntry{Canonical: row.Transliteration, Surface: v})
		}
	}
	return out
}

func loadLID(path string) (correct.LIDMap, error) {
	if path == "" {
		return nil, nil
	}
	return correct.LoadLIDMetadata(path)
}

// emitReport writes rpt to path as indented JSON, or to stdout as a short
// human summary when no path is configured (spec.md §4.I).
func emitReport(rpt report.Report, path string) {
	if path == "" {
		fmt.Println(rpt.Summary())
		return
	}
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("failed to write quality report", "path", path, "err", err)
		fmt.Println(rpt.Summary())
		return
	}
	defer f.Close()
	if err := rpt.WriteJSON(f); err != nil {
		slog.Warn("failed to encode quality report", "path", path, "err", err)
	}
}

func newLogger(verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
