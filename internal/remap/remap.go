// Package remap converts a batch of connectivity matrices from the source
// atlas to the target atlas.
package remap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/KyungWonPark/GraphTheory/internal/atlas"
	"github.com/KyungWonPark/GraphTheory/internal/config"
	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
)

// NodeListName is written next to the converted matrices and lists the
// retained nodes in matrix order.
const NodeListName = "nodes.csv"

// Alignment is the source-to-target node match shared by every file of a run.
type Alignment struct {
	Source atlas.Names
	Target atlas.Names
	Mask   atlas.Mask
}

// Kept returns the retained source names in output order.
func (a *Alignment) Kept() atlas.Names {
	return a.Mask.Select(a.Source)
}

// Align loads both label sets and matches them. Errors here are fatal for
// the run.
func Align(cfg config.Remap, log *slog.Logger) (*Alignment, error) {
	source, err := atlas.LoadNames(cfg.SourceLabels)
	if err != nil {
		return nil, fmt.Errorf("loading source labels: %w", err)
	}
	target, err := atlas.LoadNames(cfg.TargetLabels)
	if err != nil {
		return nil, fmt.Errorf("loading target labels: %w", err)
	}

	a := &Alignment{Source: source, Target: target, Mask: atlas.Match(source, target)}

	kept := a.Mask.Count()
	log.Info("matched nodes", "source", len(source), "target", len(target), "kept", kept)
	for _, n := range a.Mask.Dropped(source) {
		if n != "" {
			log.Debug("source node not in target atlas", "node", n)
		}
	}
	if kept == 0 {
		log.Warn("no source node matches the target atlas, output matrices will be empty")
	}

	return a, nil
}

// Result is the outcome of one input file.
type Result struct {
	Input  string
	Output string
	Err    error
}

// Report lists what a run converted and what it skipped.
type Report struct {
	Mode      string
	OutputDir string
	Nodes     int
	Converted []Result
	Failed    []Result
}

// ListInputs returns the files in dir ending with suffix, sorted. Symlinked
// files are included.
func ListInputs(dir, suffix string) ([]string, error) {
	return gtio.ListFiles(dir, func(name string) bool {
		return strings.HasSuffix(name, suffix)
	})
}

// ConvertFile filters one subject's matrix and writes it to outputDir.
func ConvertFile(input, outputDir, prefix string, mask atlas.Mask) (string, error) {
	matrix, err := gtio.NpytoMat64(input)
	if err != nil {
		return "", err
	}

	filtered, err := atlas.Filter(matrix, mask)
	if err != nil {
		return "", err
	}

	out := filepath.Join(outputDir, atlas.OutputName(prefix, atlas.SubjectID(input), "npy"))
	if err := gtio.Mat64toNpy(out, filtered); err != nil {
		return "", err
	}
	return out, nil
}

// WriteNodeList saves the retained node order as "Index, Node Name".
func WriteNodeList(path string, names atlas.Names) error {
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{strconv.Itoa(i), n}
	}
	return gtio.WriteTable(path, []string{"Index", "Node Name"}, rows)
}

// Run converts every matrix of the given mode. An unknown mode or unreadable
// label file stops the run before any file is touched; a bad matrix file is
// logged and skipped.
func Run(cfg config.Remap, mode string, log *slog.Logger) (*Report, error) {
	m, err := cfg.Mode(mode)
	if err != nil {
		return nil, err
	}

	align, err := Align(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	report := &Report{Mode: mode, OutputDir: m.OutputDir, Nodes: align.Mask.Count()}

	files, err := ListInputs(m.InputDir, m.Suffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warn("no input files found", "mode", mode, "dir", m.InputDir, "suffix", m.Suffix)
		return report, nil
	}

	if err := WriteNodeList(filepath.Join(m.OutputDir, NodeListName), align.Kept()); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if dups := duplicateSubjects(files); len(dups) > 0 {
		ids := make([]string, 0, len(dups))
		for id := range dups {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			log.Warn("subject ID shared by several inputs, the last one wins", "subject", id, "files", dups[id])
		}
		// same output path: keep writes ordered
		workers = 1
	}

	results := convertAll(files, m, align.Mask, workers)
	for _, r := range results {
		if r.Err != nil {
			log.Error("failed to convert", "file", filepath.Base(r.Input), "err", r.Err)
			report.Failed = append(report.Failed, r)
			continue
		}
		log.Info("saved", "file", filepath.Base(r.Output))
		report.Converted = append(report.Converted, r)
	}

	log.Info("conversion complete", "mode", mode, "converted", len(report.Converted), "failed", len(report.Failed), "dir", m.OutputDir)
	return report, nil
}

// duplicateSubjects maps each subject ID claimed by more than one input to
// the base names of those inputs.
func duplicateSubjects(files []string) map[string][]string {
	byID := make(map[string][]string, len(files))
	for _, f := range files {
		id := atlas.SubjectID(f)
		byID[id] = append(byID[id], filepath.Base(f))
	}
	for id, inputs := range byID {
		if len(inputs) < 2 {
			delete(byID, id)
		}
	}
	return byID
}

// convertAll hands file indices to workers and returns results in input
// order. The mask is only read.
func convertAll(files []string, m config.Mode, mask atlas.Mask, workers int) []Result {
	results := make([]Result, len(files))
	if workers < 1 {
		workers = 1
	}

	order := make(chan int, workers)
	var wg sync.WaitGroup
	wg.Add(len(files))

	for i := 0; i < workers; i++ {
		go func() {
			for idx := range order {
				results[idx] = convertOne(files[idx], m, mask)
				wg.Done()
			}
		}()
	}

	for i := range files {
		order <- i
	}

	wg.Wait()
	close(order)
	return results
}

func convertOne(input string, m config.Mode, mask atlas.Mask) (r Result) {
	r.Input = input
	defer func() {
		if p := recover(); p != nil {
			r.Output, r.Err = "", fmt.Errorf("converting %s: %v", filepath.Base(input), p)
		}
	}()
	r.Output, r.Err = ConvertFile(input, m.OutputDir, m.OutputPrefix, mask)
	return r
}
