package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapstream/tap"
	"github.com/tapstream/tap/internal/report"
	"github.com/tapstream/tap/internal/tapcfg"
)

var catCmd = &cobra.Command{
	Use:   "cat [file]",
	Short: "Render a complete TAP stream",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := tapcfg.Load(cfgDir)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("tapcat: %w", err)
			}
			defer f.Close()
			r = f
		}

		colorEnabled := cfg.Color.Enabled && !flagNoColor
		rep := report.New(os.Stdout, colorEnabled, cfg.Color.ShowDiag, flagGrep)

		p := tap.New(tap.WithHandler(rep.Handler()), tap.WithStrict(flagStrict || cfg.Strict))

		summaryOK := true
		p.Handler.OnComplete = wrapOnComplete(p.Handler.OnComplete, &summaryOK)

		if _, err := io.Copy(p, r); err != nil {
			return fmt.Errorf("tapcat: reading input: %w", err)
		}
		if err := p.End(); err != nil {
			return fmt.Errorf("tapcat: %w", err)
		}
		logPragmas(p)

		if !summaryOK {
			os.Exit(1)
		}
		return nil
	},
}

// wrapOnComplete records whether the final summary was ok, preserving any
// existing OnComplete callback (the reporter's own summary line).
func wrapOnComplete(prev func(tap.Summary), ok *bool) func(tap.Summary) {
	return func(s tap.Summary) {
		*ok = s.OK
		if prev != nil {
			prev(s)
		}
	}
}

func init() {
	rootCmd.AddCommand(catCmd)
}

// logPragmas writes the pragma names the parser recognized to stderr, when
// --show-pragmas is set.
func logPragmas(p *tap.Parser) {
	if !flagShowPragmas {
		return
	}
	for name, on := range p.Pragmas() {
		sign := '+'
		if !on {
			sign = '-'
		}
		fmt.Fprintf(os.Stderr, "tapcat: pragma %c%s\n", sign, name)
	}
}
