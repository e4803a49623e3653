// Command csv2mgc converts per-kind gas network CSV exports into a MATLAB gas
// case document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gridcase/csv2mgc/pkg/config"
	"github.com/gridcase/csv2mgc/pkg/csvrows"
	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/finder"
	"github.com/gridcase/csv2mgc/pkg/geo"
	"github.com/gridcase/csv2mgc/pkg/logging"
	"github.com/gridcase/csv2mgc/pkg/mgc"
	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
	"github.com/gridcase/csv2mgc/pkg/output"
	"github.com/gridcase/csv2mgc/pkg/watcher"
	"github.com/gridcase/csv2mgc/pkg/web"
)

// Watch mode waits for writes to settle before rebuilding.
const (
	quietPeriod = 300 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := config.NewFlagSet("csv2mgc")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	a := &app{flags: flags, stdout: stdout, stderr: stderr}
	overrides, err := a.reload()
	if err != nil {
		return err
	}

	builder := network.NewBuilder(decode.NewRegistry(geo.Distance))
	runner := network.NewRunner(builder, overrides, a.sources)

	cfg := a.config()
	switch {
	case cfg.Web:
		return serve(ctx, a, runner)
	case cfg.Watch:
		res, err := runner.Run(ctx, "initial build")
		if err != nil {
			return err
		}
		if err := a.emit(res); err != nil {
			return err
		}
		return watch(ctx, a, runner, func(res *network.Result) {
			if err := a.emit(res); err != nil {
				logging.Error("failed to write case", "error", err)
			}
		})
	}

	res, err := runner.Run(ctx, "initial build")
	if err != nil {
		return err
	}
	return a.emit(res)
}

// app holds the configuration of the running command. Watch mode may replace
// it when the config file changes.
type app struct {
	flags  *pflag.FlagSet
	stdout io.Writer
	stderr io.Writer

	mu  sync.Mutex
	cfg *config.Config
}

func (a *app) config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// reload loads and validates the configuration, applies its logging settings
// and returns the case overrides. The previous configuration is kept on error.
func (a *app) reload() (model.Attrs, error) {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	overrides, err := cfg.Overrides()
	if err != nil {
		return nil, err
	}

	logging.Configure(logging.Options{
		Level:  logging.LevelFor(cfg.Verbose, cfg.Quiet),
		JSON:   cfg.JSON,
		Writer: a.stderr,
	})

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	return overrides, nil
}

// sources discovers the input files. Files named per kind replace the ones
// found in the input directory.
func (a *app) sources(ctx context.Context) ([]network.Source, error) {
	cfg := a.config()
	files := make(map[model.Kind][]string)
	if cfg.Dir != "" {
		found, err := finder.FindKindFiles(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("finding input files: %w", err)
		}
		files = found
	}
	for kind, paths := range cfg.KindFiles() {
		files[kind] = paths
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input CSV files found in %s", cfg.Dir)
	}
	return csvrows.Sources(files), nil
}

// emit writes the case document and prints the build report.
func (a *app) emit(res *network.Result) error {
	cfg := a.config()
	if cfg.Output == "" || cfg.Output == "-" {
		if err := mgc.Encode(a.stdout, res.Case); err != nil {
			return fmt.Errorf("writing case: %w", err)
		}
	} else if err := writeFile(cfg.Output, mgc.Document(res.Case)); err != nil {
		return err
	}
	if !cfg.Quiet {
		output.PrintBuildReport(a.stderr, res)
	}
	return nil
}

// writeFile replaces path through a temporary file in the same directory so a
// reader never sees a partial document.
func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".csv2mgc-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := io.WriteString(tmp, content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logging.Info("wrote case", "path", path, "bytes", len(content))
	return nil
}

// watch rebuilds on every debounced change until ctx is cancelled and passes
// each result to rebuilt.
func watch(ctx context.Context, a *app, runner *network.Runner, rebuilt func(*network.Result)) error {
	cfg := a.config()
	var dirs, files []string
	if cfg.Dir != "" {
		dirs = append(dirs, cfg.Dir)
	}
	for _, paths := range cfg.KindFiles() {
		files = append(files, paths...)
	}

	fw, err := watcher.NewFileWatcher(dirs, files, cfg.ConfigFile)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		change := watcher.AnalyzeChanges(event)
		if change.ReloadConfig {
			overrides, err := a.reload()
			if err != nil {
				logging.Error("keeping previous configuration", "error", err)
			} else {
				runner.SetOverrides(overrides)
			}
		}

		res, err := runner.Run(ctx, change.Reason)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logging.Error("rebuild failed", "reason", change.Reason, "error", err)
			continue
		}
		rebuilt(res)
	}
	return nil
}

// serve runs the web server, builds once and then rebuilds on change.
func serve(ctx context.Context, a *app, runner *network.Runner) error {
	server := web.NewServer()
	runner.SetPublisher(server)
	runner.OnResult(server.SetResult)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx, a.config().Port)
		cancel()
	}()

	// A failed first build is reported over SSE; the next change retries.
	if _, err := runner.Run(ctx, "initial build"); err != nil {
		logging.Error("initial build failed", "error", err)
	}

	if err := watch(ctx, a, runner, func(*network.Result) {}); err != nil {
		cancel()
		<-errCh
		return err
	}
	return <-errCh
}
