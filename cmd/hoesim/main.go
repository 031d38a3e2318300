// Command hoesim simulates volume holograms with rigorous coupled-wave
// analysis.
//
// Usage:
//
//	hoesim [flags]
//
// Without -batch it runs one parameter sweep, prints the efficiencies as a
// table and optionally stores the result in an archive file. With -batch it
// evaluates every row of an input table.
//
// Examples:
//
//	hoesim -list
//	hoesim -config theta.json -orders 1
//	hoesim -config theta.json -archive results.json -name theta-scan
//	hoesim -batch input.txt -out eval.txt -harmonic 2 -save-interval 50
//	hoesim -info
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-vecmath/cpu"

	"github.com/cwbudde/algo-rcwa/archive"
	"github.com/cwbudde/algo-rcwa/batch"
	"github.com/cwbudde/algo-rcwa/sweep"
)

type options struct {
	config       string
	archive      string
	name         string
	color        string
	orders       int
	batchIn      string
	batchOut     string
	harmonic     int
	saveInterval int
	verbose      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "JSON file with parameter values, sweep variable and range")
	flag.StringVar(&opts.archive, "archive", "", "archive JSON file; the finished sweep is added to it")
	flag.StringVar(&opts.name, "name", sweep.DefaultName, "archive entry name")
	flag.StringVar(&opts.color, "color", sweep.DefaultArchiveColor, "archive entry color")
	flag.IntVar(&opts.orders, "orders", 1, "print diffraction orders -orders..orders")
	flag.StringVar(&opts.batchIn, "batch", "", "evaluate the rows of this input table instead of sweeping")
	flag.StringVar(&opts.batchOut, "out", "", "batch output file (default stdout)")
	flag.IntVar(&opts.harmonic, "harmonic", 1, "harmonic order for batch evaluation")
	flag.IntVar(&opts.saveInterval, "save-interval", batch.DefaultSaveInterval, "rows per written block in batch evaluation")
	flag.BoolVar(&opts.verbose, "v", false, "log debug messages")
	list := flag.Bool("list", false, "list the parameters and exit")
	info := flag.Bool("info", false, "print CPU SIMD features and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hoesim [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Simulates volume holograms with rigorous coupled-wave analysis.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hoesim -list\n")
		fmt.Fprintf(os.Stderr, "  hoesim -config theta.json -archive results.json -name theta-scan\n")
		fmt.Fprintf(os.Stderr, "  hoesim -batch input.txt -out eval.txt -harmonic 2\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var err error
	switch {
	case *info:
		err = writeInfo(os.Stdout, cpu.DetectFeatures())
	case *list:
		err = listParameters(os.Stdout, opts)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if opts.batchIn != "" {
			err = runBatch(ctx, log, opts)
		} else {
			err = runSweep(ctx, log, os.Stdout, opts)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parameterTable(path string) (*sweep.ParameterTable, error) {
	t := sweep.NewParameterTable()
	if path == "" {
		return t, nil
	}
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

func listParameters(w io.Writer, opts options) error {
	t, err := parameterTable(opts.config)
	if err != nil {
		return err
	}
	return writeParameters(w, t)
}

func runSweep(ctx context.Context, log *slog.Logger, w io.Writer, opts options) error {
	t, err := parameterTable(opts.config)
	if err != nil {
		return err
	}

	store := archive.New()
	if opts.archive != "" {
		if err := loadArchive(store, opts.archive); err != nil {
			return err
		}
	}

	orch, err := sweep.New(t,
		sweep.WithLogger(log),
		sweep.WithArchive(store),
		sweep.WithOnStep(func(ev sweep.StepEvent) {
			if ev.Err != nil {
				return
			}
			log.Debug("value calculated", "index", ev.Index, "value", ev.Value, "progress", ev.Progress)
		}),
	)
	if err != nil {
		return err
	}

	if err := orch.Start(ctx); err != nil {
		return err
	}
	orch.Wait()

	snap := waitSnapshot(orch)
	res := orch.Result()
	if res != nil {
		if err := writeResult(w, res, opts.orders); err != nil {
			return err
		}
	}
	if snap.State != sweep.StateCompleted {
		if snap.LastError != nil {
			return fmt.Errorf("sweep %s: %w", snap.State, snap.LastError)
		}
		return fmt.Errorf("sweep %s at %d%%", snap.State, snap.Progress)
	}

	if opts.archive == "" {
		return nil
	}
	if err := orch.TransferToArchive(opts.name, opts.color); err != nil {
		return err
	}
	return saveArchive(store, opts.archive)
}

// waitSnapshot retries until the orchestrator data are unlocked.
func waitSnapshot(o *sweep.Orchestrator) sweep.Snapshot {
	for {
		if snap, ok := o.Snapshot(sweep.Selection{}); ok {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
}

func loadArchive(store *archive.Store, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Load(f)
}

// saveArchive writes the archive next to path and renames it into place.
func saveArchive(store *archive.Store, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := store.Save(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func runBatch(ctx context.Context, log *slog.Logger, opts options) (err error) {
	in, err := os.Open(opts.batchIn)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if opts.batchOut != "" {
		f, cerr := os.Create(opts.batchOut)
		if cerr != nil {
			return cerr
		}
		defer closeKeepingError(f, &err)
		out = f
	}

	log.Info("hoe evaluation", "input", opts.batchIn, "columns", batch.ColumnNames,
		"save_interval", opts.saveInterval, "harmonic_order", opts.harmonic)
	e := batch.Evaluator{
		HarmonicOrder: opts.harmonic,
		SaveInterval:  opts.saveInterval,
		Logger:        log,
	}
	_, err = e.Run(ctx, in, out)
	return err
}

// closeKeepingError closes c and stores its error in *err unless an earlier
// error is already there.
func closeKeepingError(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close output: %w", cerr)
	}
}
