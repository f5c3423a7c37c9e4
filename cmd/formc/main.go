// Command formc drives the compiler end to end: resolve each requested
// namespace on the search path, run its forms through the pipeline, and
// write the rendered output to the destination tree (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/formlang/formc/internal/driver"
	"github.com/formlang/formc/internal/driverconfig"
	"github.com/formlang/formc/internal/pipeline"
	"github.com/formlang/formc/internal/surface"
)

// readerFor turns raw source bytes into forms. The textual reader itself
// (tokenizing, reader macros, tag-literal dispatch) is out of this
// compiler's scope (spec.md §1 non-goals); production builds wire a real
// implementation in here. Without one, formc still resolves namespaces and
// reports exactly where it would have read from.
var readerFor = func(data []byte, file string) ([]surface.Form, error) {
	return nil, fmt.Errorf("no reader registered for %s (reading source text is out of scope; see DESIGN.md)", file)
}

func main() {
	configPath := flag.String("config", "formc.yaml", "path to the driver configuration file")
	flag.Parse()
	namespaces := flag.Args()

	runID := uuid.New()
	color := isatty.IsTerminal(os.Stdout.Fd())
	start := time.Now()

	if len(namespaces) == 0 {
		fmt.Fprintln(os.Stderr, "usage: formc [-config formc.yaml] namespace [namespace ...]")
		os.Exit(2)
	}

	cfg, err := driverconfig.Load(*configPath)
	if err != nil {
		fail(color, "loading %s: %v", *configPath, err)
	}

	d := driver.New(cfg)
	pl := pipeline.New()
	ctx := context.Background()

	var compiled, failed int
	for _, ns := range namespaces {
		src, err := d.Resolve(ctx, ns)
		if err != nil {
			logf(color, "error", "%s: %v", ns, err)
			failed++
			continue
		}
		data, err := d.FS.DownloadWithURL(ctx, src)
		if err != nil {
			logf(color, "error", "%s: reading %s: %v", ns, src, err)
			failed++
			continue
		}
		forms, err := readerFor(data, src)
		if err != nil {
			logf(color, "error", "%s: %v", ns, err)
			failed++
			continue
		}

		rendered, errs := pl.ProcessNamespace(ns, forms)
		for _, e := range errs {
			logf(color, "error", "%s: %v", ns, e)
		}
		if len(errs) > 0 {
			failed++
			continue
		}
		if err := d.Write(ctx, ns, rendered); err != nil {
			logf(color, "error", "%s: writing output: %v", ns, err)
			failed++
			continue
		}
		compiled++
	}

	elapsed := time.Since(start)
	fmt.Printf("run %s: compiled %s namespace(s), %d failed, in %s\n",
		runID, humanize.Comma(int64(compiled)), failed, elapsed.Round(time.Millisecond))

	if failed > 0 {
		os.Exit(1)
	}
}

func logf(color bool, level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if color && level == "error" {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m: %s\n", level, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", level, msg)
}

func fail(color bool, format string, args ...interface{}) {
	logf(color, "fatal", format, args...)
	os.Exit(1)
}
