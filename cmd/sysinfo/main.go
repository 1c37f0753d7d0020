// Command sysinfo hosts the sysinfo plugin: it loads it in-process or from a
// shared object, issues status and report requests, and prints every
// outbound report the plugin sends.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	goplugin "plugin"
	"sync"
	"syscall"
	"time"

	"github.com/bc-dunia/sysinfo/internal/abi"
	"github.com/bc-dunia/sysinfo/internal/config"
	"github.com/bc-dunia/sysinfo/internal/plugin"
	"github.com/bc-dunia/sysinfo/internal/report"
)

var version = "dev"

// host is what the harness needs from a loaded plugin.
type host interface {
	Name() string
	Targets() []string
	Status() string
	Action(verb, primary, secondary string) string
}

type hostOptions struct {
	configPath string
	pluginPath string
}

type opener func(opts hostOptions, outbox chan<- string, log io.Writer) (host, func(), error)

type app struct {
	stdout io.Writer
	stderr io.Writer
	open   opener
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr, open: openHost}
	os.Exit(a.run(ctx, os.Args[1:]))
}

func (a *app) run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("sysinfo", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	pluginPath := fs.String("plugin", "", "Path to a plugin built with -buildmode=plugin (default: in-process)")
	interval := fs.Duration("interval", config.DefaultWatchInterval, "Report interval for the watch command")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: sysinfo [flags] <status | report <target> | targets | watch | version>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cmd := fs.Arg(0)
	switch cmd {
	case "version":
		fmt.Fprintf(a.stdout, "sysinfo %s\n", version)
		return 0
	case "status", "targets", "watch":
	case "report":
		if fs.Arg(1) == "" {
			fmt.Fprintln(a.stderr, "Error: report requires a target (myself, status)")
			return 2
		}
	default:
		fs.Usage()
		return 2
	}

	if *interval <= 0 {
		fmt.Fprintln(a.stderr, "Error: --interval must be positive")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}

	outbox := make(chan string, cfg.Dispatch.BufferSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.drain(outbox)
	}()

	h, unload, err := a.open(hostOptions{configPath: *configPath, pluginPath: *pluginPath}, outbox, a.stderr)
	if err != nil {
		close(outbox)
		wg.Wait()
		fmt.Fprintf(a.stderr, "Error: failed to load plugin: %v\n", err)
		return 1
	}

	switch cmd {
	case "status":
		fmt.Fprint(a.stdout, h.Status())
	case "report":
		h.Action(plugin.ActionReport, fs.Arg(1), fs.Arg(2))
	case "targets":
		for _, name := range h.Targets() {
			fmt.Fprintln(a.stdout, name)
		}
	case "watch":
		a.watch(ctx, h, *interval)
	}

	// The plugin must be gone before the channel closes.
	unload()
	close(outbox)
	wg.Wait()
	return 0
}

func (a *app) watch(ctx context.Context, h host, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		h.Action(plugin.ActionReport, plugin.TargetMyself, "")
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *app) drain(outbox <-chan string) {
	for line := range outbox {
		r, err := report.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(a.stdout, "%s\n", line)
			continue
		}
		fmt.Fprintf(a.stdout, "%s: %s\n", r.Topic, r.Payload)
	}
}

func openHost(opts hostOptions, outbox chan<- string, log io.Writer) (host, func(), error) {
	if opts.pluginPath == "" {
		h := abi.Create(outbox,
			abi.WithConfigPath(opts.configPath),
			abi.WithPluginOptions(plugin.WithOutput(log)))
		return h, func() { abi.Unload(h) }, nil
	}
	return openShared(opts, outbox)
}

func openShared(opts hostOptions, outbox chan<- string) (host, func(), error) {
	if opts.configPath != "" {
		if err := os.Setenv(config.EnvConfigPath, opts.configPath); err != nil {
			return nil, nil, err
		}
	}

	p, err := goplugin.Open(opts.pluginPath)
	if err != nil {
		return nil, nil, err
	}

	createSym, err := p.Lookup("CreatePlugin")
	if err != nil {
		return nil, nil, err
	}
	unloadSym, err := p.Lookup("UnloadPlugin")
	if err != nil {
		return nil, nil, err
	}

	create, ok := createSym.(func(chan<- string) *abi.Handle)
	if !ok {
		return nil, nil, errors.New("CreatePlugin has an unexpected signature")
	}
	unloadFn, ok := unloadSym.(func(*abi.Handle))
	if !ok {
		return nil, nil, errors.New("UnloadPlugin has an unexpected signature")
	}

	h := create(outbox)
	return h, func() { unloadFn(h) }, nil
}
