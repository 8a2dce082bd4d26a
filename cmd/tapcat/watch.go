package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tapstream/tap"
	"github.com/tapstream/tap/internal/report"
	"github.com/tapstream/tap/internal/tapcfg"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Follow a TAP log file as it grows, rendering new lines as they appear",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := tapcfg.Load(cfgDir)
		if err != nil {
			return err
		}

		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("tapcat: %w", err)
		}
		defer f.Close()

		colorEnabled := cfg.Color.Enabled && !flagNoColor
		rep := report.New(os.Stdout, colorEnabled, cfg.Color.ShowDiag, flagGrep)
		p := tap.New(tap.WithHandler(rep.Handler()), tap.WithStrict(flagStrict || cfg.Strict))

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("tapcat: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("tapcat: %w", err)
		}

		// Drain whatever's already in the file before watching for growth.
		if _, err := io.Copy(p, f); err != nil {
			return fmt.Errorf("tapcat: %w", err)
		}

		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		var pending bool
		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					logPragmas(p)
					return p.End()
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					pending = true
					timer.Reset(debounce)
				}
				if ev.Op&fsnotify.Remove != 0 {
					logPragmas(p)
					return p.End()
				}
			case <-timer.C:
				if pending {
					pending = false
					if _, err := io.Copy(p, f); err != nil {
						return fmt.Errorf("tapcat: %w", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					logPragmas(p)
					return p.End()
				}
				return fmt.Errorf("tapcat: %w", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
