// Package report renders a tap.Parser's event stream to a terminal,
// colorizing pass/fail/skip/todo status and wrapping diagnostic dumps to
// the detected terminal width.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/term"

	"github.com/tapstream/tap"
)

// Reporter prints a colorized, human-readable rendering of a parser's
// events as they arrive.
type Reporter struct {
	out   io.Writer
	width int

	colorEnabled bool
	showDiag     bool
	grep         string

	pass, fail, todo, skip *color.Color
	dim, bold               *color.Color

	depth int
}

// New constructs a Reporter writing to w.
func New(w io.Writer, colorEnabled, showDiag bool, grep string) *Reporter {
	r := &Reporter{
		out:          w,
		width:        terminalWidth(),
		colorEnabled: colorEnabled,
		showDiag:     showDiag,
		grep:         grep,
		pass:         color.New(color.FgGreen),
		fail:         color.New(color.FgRed, color.Bold),
		todo:         color.New(color.FgYellow),
		skip:         color.New(color.FgCyan),
		dim:          color.New(color.FgHiBlack),
		bold:         color.New(color.Bold),
	}
	if !colorEnabled {
		color.NoColor = true
	}
	return r
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120
	}
	return width
}

// Handler returns a tap.Handler wired to print through r. Its OnChild hook
// attaches a nested Reporter to each spawned child, one indent level
// deeper, so subtest output nests visually.
func (r *Reporter) Handler() tap.Handler {
	return tap.Handler{
		OnVersion: func(v int) {
			fmt.Fprintln(r.out, r.dim.Sprintf("# TAP version %d", v))
		},
		OnPlan: func(p tap.Plan) {
			if p.SkipAll {
				fmt.Fprintln(r.out, r.dim.Sprintf("1..0 # SKIP %s", p.SkipReason))
				return
			}
			fmt.Fprintln(r.out, r.dim.Sprintf("%d..%d", p.Start, p.End))
		},
		OnAssert:  r.printAssert,
		OnComment: func(line string) { fmt.Fprintln(r.out, r.dim.Sprint(line)) },
		OnExtra: func(data string) {
			fmt.Fprint(r.out, r.wrap(data))
		},
		OnChild: func(child *tap.Parser) {
			nested := &Reporter{
				out: r.out, width: r.width, colorEnabled: r.colorEnabled,
				showDiag: r.showDiag, grep: r.grep,
				pass: r.pass, fail: r.fail, todo: r.todo, skip: r.skip,
				dim: r.dim, bold: r.bold, depth: r.depth + 1,
			}
			child.Handler = nested.Handler()
		},
		OnBailout: func(reason string) {
			fmt.Fprintln(r.out, r.fail.Sprintf("Bail out! %s", reason))
		},
		OnComplete: func(s tap.Summary) {
			r.printSummary(s)
		},
	}
}

func (r *Reporter) printAssert(a tap.Assertion) {
	if r.grep != "" && !fuzzy.MatchFold(r.grep, a.Name) {
		return
	}

	indent := strings.Repeat("  ", r.depth)
	status := r.pass.Sprint("ok")
	switch {
	case a.Skip.Set:
		status = r.skip.Sprint("ok")
	case a.Todo.Set:
		status = r.todo.Sprint("ok")
	case !a.OK:
		status = r.fail.Sprint("not ok")
	}

	line := fmt.Sprintf("%s%s %d - %s", indent, status, a.ID, a.Name)
	if a.Skip.Set {
		line += r.dim.Sprintf(" # SKIP %s", a.Skip.Reason)
	}
	if a.Todo.Set {
		line += r.dim.Sprintf(" # TODO %s", a.Todo.Reason)
	}
	if a.HasTime {
		line += r.dim.Sprintf(" (%.1fms)", a.TimeMS)
	}
	fmt.Fprintln(r.out, line)

	if r.showDiag && len(a.Diag) > 0 {
		for k, v := range a.Diag {
			fmt.Fprintln(r.out, r.wrap(fmt.Sprintf("  %s  %s: %v", indent, k, v)))
		}
	}
}

func (r *Reporter) printSummary(s tap.Summary) {
	verdict := r.pass.Sprint("PASS")
	if !s.OK {
		verdict = r.fail.Sprint("FAIL")
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.bold.Sprintf("%s  %d total, %d passed, %d failed, %d todo, %d skipped",
		verdict, s.Count, s.Pass, s.Fail, s.Todo, s.Skip))
	if s.HasBailout {
		fmt.Fprintln(r.out, r.fail.Sprintf("bailed out: %s", s.Bailout))
	}
	for _, f := range s.Failures {
		if f.TapError != "" {
			fmt.Fprintln(r.out, r.fail.Sprintf("  protocol error: %s", f.TapError))
		}
	}
}

// wrap soft-wraps s to the reporter's detected terminal width.
func (r *Reporter) wrap(s string) string {
	if r.width <= 0 || len(s) <= r.width {
		return s
	}
	var b strings.Builder
	for len(s) > r.width {
		b.WriteString(s[:r.width])
		b.WriteByte('\n')
		s = s[r.width:]
	}
	b.WriteString(s)
	return b.String()
}
