// Package driver resolves namespaces to source files on a search path and
// writes generated target-language files to the destination tree (spec.md
// §6 File driver). File I/O goes through afs so the same driver logic works
// unmodified over local disk, archives, or remote storage.
package driver

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/driverconfig"
)

// Driver resolves namespace names against a search path and writes rendered
// output to a destination tree, both via afs.
type Driver struct {
	FS     afs.Service
	Config driverconfig.Config
}

// New builds a Driver backed by a fresh local/afs file service.
func New(cfg driverconfig.Config) *Driver {
	return &Driver{FS: afs.New(), Config: cfg}
}

// segmentPath lowers a dotted namespace name to its relative file path
// stem, mangling "-" to "_" per segment (spec.md §6: namespace-to-path).
func segmentPath(ns string) string {
	segments := strings.Split(ns, ".")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(s, "-", "_")
	}
	return strings.Join(segments, "/")
}

// candidates enumerates every (searchRoot, extension) file this namespace
// could live at, in search-path and extension order.
func (d *Driver) candidates(ns string) []string {
	stem := segmentPath(ns)
	var out []string
	for _, root := range d.Config.SearchPath {
		for _, ext := range config.SourceFileExtensions {
			out = append(out, path.Join(root, stem+ext))
		}
	}
	return out
}

// Resolve finds which of a namespace's candidate source files actually
// exists, probing the search path in parallel (spec.md §6: "the driver
// tries each search-path entry with each recognized extension"). The first
// existing candidate in declared search-path order wins even if a later
// probe returns faster, since import resolution must be deterministic.
func (d *Driver) Resolve(ctx context.Context, ns string) (string, error) {
	cands := d.candidates(ns)
	exists := make([]bool, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			ok, err := d.FS.Exists(gctx, c)
			if err != nil {
				return nil
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	for i, ok := range exists {
		if ok {
			return cands[i], nil
		}
	}
	return "", fmt.Errorf("namespace %q not found on search path", ns)
}

// DestinationPath returns the path a namespace's generated output is
// written to: destinationDir/generatedDir/<namespace-path>.<target-ext>.
func (d *Driver) DestinationPath(ns string) string {
	return path.Join(d.Config.DestinationDir, d.Config.GeneratedDir, segmentPath(ns)+config.TargetFileExt)
}

// Write renders content to ns's destination path.
func (d *Driver) Write(ctx context.Context, ns, content string) error {
	dest := d.DestinationPath(ns)
	return d.FS.Upload(ctx, dest, os.FileMode(0644), strings.NewReader(content))
}
