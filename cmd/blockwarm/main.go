// Command blockwarm is Core A, the block-device warmer: it maps the
// files under one or more directories onto their backing device's
// physical extents and issues strided asynchronous reads against the raw
// device (with O_DIRECT when --direct-io is set and the device allows
// it, bypassing the page cache) so the backing storage fetches those
// blocks; with --full-disk it also sweeps whatever of the device those
// files didn't touch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	warmer "github.com/beam-cloud/diskwarm/pkg"
)

func main() {
	defaults := warmer.DefaultCoreAConfig()

	fs := pflag.NewFlagSet("blockwarm", pflag.ExitOnError)
	fs.Int64("read-size-kb", defaults.ReadSizeKB, "size of each read, in KiB")
	fs.Int64("stride-kb", defaults.StrideKB, "spacing between reads, in KiB")
	fs.Int("queue-depth", defaults.QueueDepth, "max in-flight reads")
	fs.Bool("full-disk", defaults.FullDisk, "sweep the remainder of the device after phase 1")
	fs.Bool("merge-extents", defaults.MergeExtents, "coalesce adjacent extents before submission")
	fs.Int("threads", defaults.Threads, "walker worker threads (1-16)")
	fs.Int("max-depth", defaults.MaxDepth, "max directory recursion depth, -1 for unlimited")
	fs.Bool("follow-symlinks", defaults.FollowSymlinks, "follow symlinked directories and files")
	fs.Bool("respect-ignore", defaults.RespectIgnore, "honor .warmerignore files")
	fs.Bool("ignore-hidden", defaults.IgnoreHidden, "skip dot-prefixed entries")
	fs.Int64("max-file-size", defaults.MaxFileSize, "skip files larger than this many bytes, 0 to disable")
	fs.Int("throttle", defaults.Throttle, "throttle level 0-7")
	fs.String("io-backend", string(defaults.Backend), "ring, aio, or auto")
	fs.Bool("direct-io", defaults.DirectIO, "open the device with O_DIRECT")
	fs.Bool("silent", defaults.Silent, "suppress progress output")
	fs.Bool("syslog", defaults.Syslog, "also log to syslog")
	fs.Bool("debug", defaults.Debug, "verbose debug logging")
	fs.String("device", defaults.DevicePath, "backing block device path")
	fs.String("config", "", "path to a YAML or JSON config file")
	fs.String("metrics-addr", "", "address to serve Prometheus metrics on, empty to disable")
	directories := fs.StringArray("directory", nil, "directory to scan (repeatable)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	configPath, _ := fs.GetString("config")
	defaults.Directories = *directories

	cfg, err := warmer.LoadConfig(defaults, fs, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockwarm: %v\n", err)
		os.Exit(1)
	}

	if err := warmer.InitLogger(cfg.Debug, cfg.Silent, cfg.Syslog); err != nil {
		fmt.Fprintf(os.Stderr, "blockwarm: initializing logger: %v\n", err)
		os.Exit(1)
	}

	if addr, _ := fs.GetString("metrics-addr"); addr != "" {
		go func() {
			if err := warmer.StartMetricsServer(addr); err != nil {
				warmer.Logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := warmer.NewOrchestratorA(cfg)
	result, err := orch.Run(ctx)
	if err != nil {
		warmer.Logger.Errorf("run %s: %v", result.State, err)
		os.Exit(1)
	}
}
