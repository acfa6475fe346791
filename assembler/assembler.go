// Package assembler discovers model artifacts on disk, parses them in
// parallel, and merges them into a single model. Parsing is fan-out work;
// merging is sequential and deterministic, ordered by artifact path, so a
// set of artifacts always assembles to the same model or the same set of
// conflicts.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/anvil-idl/anvil/jsonast"
	"github.com/anvil-idl/anvil/model"
)

// EnvPath is the environment variable holding a list of artifact search
// paths, separated by the platform's path list separator.
const EnvPath = "ANVIL_PATH"

// FileType binds a set of filename extensions to an artifact parser. The
// registry is extensible so front ends for other representations can plug
// in without the assembler knowing them.
type FileType struct {
	// Name identifies the representation in logs and errors.
	Name string

	// Extensions lists the filename extensions, with leading dot, claimed
	// by this type.
	Extensions []string

	// Parse reads one artifact into a standalone model.
	Parse func(r io.Reader) (*model.Model, error)
}

// JSONFileType is the built-in JSON model artifact type.
func JSONFileType() FileType {
	return FileType{
		Name:       "json",
		Extensions: []string{".json"},
		Parse:      jsonast.Read,
	}
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger attaches a logger for per-artifact progress.
func WithLogger(logger *log.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithFileType registers an additional artifact type. A later registration
// claims an extension over an earlier one.
func WithFileType(ft FileType) Option {
	return func(a *Assembler) { a.register(ft) }
}

// WithPrelude merges the built-in prelude into the assembled model before
// any artifact.
func WithPrelude() Option {
	return func(a *Assembler) { a.prelude = true }
}

// New constructs an assembler with the JSON file type registered.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		types:  make(map[string]FileType),
		logger: log.New(io.Discard),
	}
	a.register(JSONFileType())
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assembler accumulates search paths and assembles them on demand. It is
// not safe for concurrent mutation; build it up, then call Assemble.
type Assembler struct {
	types   map[string]FileType
	paths   []string
	prelude bool
	logger  *log.Logger
}

func (a *Assembler) register(ft FileType) {
	for _, ext := range ft.Extensions {
		a.types[strings.ToLower(ext)] = ft
	}
}

// AddPath queues a file or directory for assembly. Directories are walked
// recursively at assembly time; files in them with unrecognized extensions
// are skipped, but a file named directly must be parseable.
func (a *Assembler) AddPath(paths ...string) *Assembler {
	a.paths = append(a.paths, paths...)
	return a
}

// AddEnvPaths queues every path listed in the ANVIL_PATH environment
// variable.
func (a *Assembler) AddEnvPaths() *Assembler {
	for _, p := range filepath.SplitList(os.Getenv(EnvPath)) {
		if p != "" {
			a.paths = append(a.paths, p)
		}
	}
	return a
}

// artifact is one file scheduled for parsing.
type artifact struct {
	path     string
	fileType FileType
}

// Assemble parses every queued artifact and merges the results. Artifacts
// parse concurrently; the merge applies them in sorted path order and
// collects every conflict before failing, so one bad pair of artifacts
// reports all of its collisions at once.
func (a *Assembler) Assemble(ctx context.Context) (*model.Model, error) {
	artifacts, err := a.expand()
	if err != nil {
		return nil, err
	}

	parsed := make([]*model.Model, len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	for i, art := range artifacts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(art.path)
			if err != nil {
				return fmt.Errorf("open artifact: %w", err)
			}
			defer f.Close()
			m, err := art.fileType.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", art.path, err)
			}
			a.logger.Debug("parsed artifact", "path", art.path, "type", art.fileType.Name, "shapes", m.Len())
			parsed[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := model.NewModel("")
	if a.prelude {
		if errs := merged.Merge(model.NewPrelude()); len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
	}
	var conflicts []error
	for i, m := range parsed {
		if errs := merged.Merge(m); len(errs) > 0 {
			for _, e := range errs {
				conflicts = append(conflicts, fmt.Errorf("%s: %w", artifacts[i].path, e))
			}
		}
	}
	if len(conflicts) > 0 {
		return nil, errors.Join(conflicts...)
	}
	a.logger.Debug("assembled model", "artifacts", len(parsed), "shapes", merged.Len())
	return merged, nil
}

// expand resolves the queued paths to a sorted, deduplicated artifact list.
func (a *Assembler) expand() ([]artifact, error) {
	seen := make(map[string]struct{})
	var out []artifact
	add := func(path string, ft FileType) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, artifact{path: path, fileType: ft})
	}

	for _, p := range a.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("artifact path: %w", err)
		}
		if !info.IsDir() {
			ft, ok := a.types[strings.ToLower(filepath.Ext(p))]
			if !ok {
				return nil, fmt.Errorf("no registered file type for %s", p)
			}
			add(p, ft)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ft, ok := a.types[strings.ToLower(filepath.Ext(path))]; ok {
				add(path, ft)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}
