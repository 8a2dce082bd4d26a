package tap

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/tapstream/tap/internal/yamldoc"
)

// ErrClosed is returned by Write after the parser has already been ended.
var ErrClosed = errors.New("tap: write after end")

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithHandler registers the callback set the parser will drive as it
// classifies input. Equivalent to setting Handler directly after New.
func WithHandler(h Handler) Option {
	return func(p *Parser) { p.Handler = h }
}

// WithYAMLLoader overrides the diagnostic-block YAML loader. The default
// is backed by gopkg.in/yaml.v3 (internal/yamldoc).
func WithYAMLLoader(fn YAMLLoader) Option {
	return func(p *Parser) { p.yamlLoader = fn }
}

// withIndent and withBuffered are construction-only knobs used when a
// parser spawns a nested child parser; they have no exported surface
// because a root parser never needs them.
func withIndent(s string) Option { return func(p *Parser) { p.indent = s } }
func withBuffered(a *Assertion) Option {
	return func(p *Parser) { p.buffered = a }
}

// WithStrict pre-enables strict mode (as if a leading `pragma +strict` line
// had already been seen), so a caller can force it regardless of what the
// stream itself declares.
func WithStrict(strict bool) Option {
	return func(p *Parser) { p.strict = strict }
}

// Parser is a single streaming TAP parser. A parser spawned to handle a
// subtest owns, at most, one child of its own; there is no shared mutable
// state between a parser and its child beyond the hooks wired at spawn
// time.
type Parser struct {
	Handler    Handler
	yamlLoader YAMLLoader

	indent string

	// buffered is set only for a child spawned to parse a brace-delimited
	// subtest: it is the enclosing assertion that will be flushed once
	// this child's closing "}" is seen.
	buffered *Assertion

	buf []byte

	bailedOut     bool
	bailoutReason string

	hasPlan     bool
	planStart   int
	planEnd     int
	planComment string
	postPlan    bool

	diag *diagBlock

	child *Parser

	current      *Assertion
	commentQueue []string

	count, pass, fail, todo, skip int
	first, last                  int
	haveFirst                   bool

	failures   []Assertion
	anyFailure bool

	sawValidTAP bool
	strict      bool
	pragmas     map[string]bool

	childForcedFail bool

	ended    bool
	finished bool

	onBailoutPropagate     func(reason string)
	onCompleteNotifyParent func(s Summary)
}

// New constructs a root Parser ready to receive input via Write.
func New(opts ...Option) *Parser {
	p := &Parser{
		planStart:  -1,
		planEnd:    -1,
		pragmas:    make(map[string]bool),
		yamlLoader: yamldoc.Load,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Write feeds a chunk of raw TAP bytes into the parser. It implements
// io.Writer; chunk boundaries carry no meaning and may split lines
// arbitrarily.
func (p *Parser) Write(chunk []byte) (int, error) {
	if p.ended {
		return 0, ErrClosed
	}
	p.buf = append(p.buf, chunk...)
	p.drainLines()
	return len(chunk), nil
}

// WriteString is the string-oriented equivalent of Write.
func (p *Parser) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// End signals that no more input is coming, optionally writing one final
// chunk first. It is idempotent: subsequent calls are no-ops. Once End
// returns, the parser's OnComplete callback (if any) has already fired.
func (p *Parser) End(chunk ...[]byte) error {
	if p.ended {
		return nil
	}
	for _, c := range chunk {
		if _, err := p.Write(c); err != nil {
			return err
		}
	}
	p.ended = true
	if len(p.buf) > 0 {
		content := p.stripCR(string(p.buf))
		p.buf = nil
		p.processLine(content)
	}
	p.finish()
	return nil
}

// ingestLine is how a parent parser hands an already-dedented line to a
// child parser. The child treats it exactly like a line arriving from
// Write, without re-scanning for further embedded newlines.
func (p *Parser) ingestLine(content string) {
	if p.ended || p.finished {
		return
	}
	p.processLine(content)
}

func (p *Parser) drainLines() {
	for {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			return
		}
		raw := p.buf[:idx]
		p.buf = p.buf[idx+1:]
		p.processLine(p.stripCR(string(raw)))
	}
}

func (p *Parser) stripCR(s string) string {
	if strings.HasSuffix(s, "\r") {
		return s[:len(s)-1]
	}
	return s
}

// processLine is the per-line entry point shared by Write's line scanner,
// End's final synthesized line, and ingestLine.
func (p *Parser) processLine(content string) {
	if p.bailedOut {
		return
	}
	p.Handler.line(content + "\n")

	if content == "" {
		p.handleBlank()
		return
	}

	if p.child != nil {
		if strings.HasPrefix(content, p.child.indent) {
			p.child.ingestLine(content[len(p.child.indent):])
			return
		}
		p.handleChildMismatch(content)
		return
	}

	p.dispatchContent(content)
}

func (p *Parser) handleBlank() {
	switch {
	case p.child != nil:
		p.child.ingestLine("")
	case p.diag != nil:
		p.diag.text += "\n"
	}
}

// handleChildMismatch is reached when a line doesn't extend the open
// child's indent prefix. A bare "}" terminates a buffered child and
// reattaches it to the assertion it was nested under; anything else
// terminates the child (streamed close) and reprocesses the line at this
// level.
func (p *Parser) handleChildMismatch(content string) {
	child := p.child
	if content == "}" && child.buffered != nil {
		p.finalizeChild()
		p.closeBuffered()
		return
	}
	p.finalizeChild()
	p.dispatchContent(content)
}

// closeBuffered strips the trailing "{" that introduced a brace-delimited
// subtest from the pending assertion's name, trims the result, and
// flushes it (§4.E).
func (p *Parser) closeBuffered() {
	if p.current != nil {
		name := strings.TrimRight(p.current.Name, " \t")
		name = strings.TrimSuffix(name, "{")
		p.current.Name = strings.TrimRight(name, " \t")
	}
	p.flushCurrent()
}

// dispatchContent handles a line once it's known not to belong to an open
// child. A still-open diagnostic block takes priority over every other
// interpretation, indented or not.
func (p *Parser) dispatchContent(full string) {
	if p.diag != nil {
		p.handleDiagLine(full)
		return
	}

	leading, rest := splitLeadingWS(full)
	if leading != "" {
		p.handleIndented(leading, rest)
		return
	}

	if strings.HasPrefix(full, "#") {
		p.handleComment(full)
		return
	}

	if p.postPlan {
		p.handleNonTAP(full)
		return
	}

	p.dispatchShapes(full)
}

// handleIndented covers a buffered-subtest opener following a
// `name {`-suffixed assertion, a diagnostic-block opener, a streamed
// subtest opener, or (failing all of those) indented garbage.
func (p *Parser) handleIndented(leading, rest string) {
	full := leading + rest

	if p.current != nil && strings.HasSuffix(strings.TrimRight(p.current.Name, " \t"), "{") {
		p.spawnBufferedChild(leading, rest)
		return
	}
	if rest == "---" && p.current != nil {
		p.openDiagnostic(leading)
		return
	}
	if !p.postPlan && classify(rest).shape != shapeNone {
		p.spawnStreamedChild(leading, rest)
		return
	}
	p.handleNonTAP(full)
}

func (p *Parser) handleComment(full string) {
	if p.current != nil || len(p.commentQueue) > 0 {
		p.commentQueue = append(p.commentQueue, full)
		return
	}
	p.Handler.comment(full)
}

// dispatchShapes tries each top-level, unindented line shape in turn; a
// shape that doesn't apply in the current state falls through to the
// next, and a line matching none of them is non-TAP.
func (p *Parser) dispatchShapes(full string) {
	if p.tryBailout(full) {
		return
	}
	if p.tryPragma(full) {
		return
	}
	if p.tryVersion(full) {
		return
	}
	if p.tryPlan(full) {
		return
	}
	if p.tryBufferedClose(full) {
		return
	}
	if p.tryTestPoint(full) {
		return
	}
	p.handleNonTAP(full)
}

func (p *Parser) tryBailout(full string) bool {
	c := classify(full)
	if c.shape != shapeBailout {
		return false
	}
	// The assertion pending before the bailout line is still delivered,
	// ahead of the bailout event.
	p.flushCurrent()
	p.doBailout(c.bailoutReason)
	return true
}

func (p *Parser) doBailout(reason string) {
	if p.bailedOut {
		return
	}
	p.bailedOut = true
	p.bailoutReason = reason
	p.sawValidTAP = true
	p.anyFailure = true

	p.current = nil
	p.commentQueue = nil
	p.diag = nil
	p.child = nil

	p.Handler.bailout(reason)
	if p.onBailoutPropagate != nil {
		p.onBailoutPropagate(reason)
	}
}

// tryPragma recognizes `pragma +name` / `pragma -name` lines. Pragmas have
// no event of their own; they only flip parser-local state, most notably
// +strict/-strict.
func (p *Parser) tryPragma(full string) bool {
	c := classify(full)
	if c.shape != shapePragma {
		return false
	}
	p.sawValidTAP = true
	on := c.pragmaSign == '+'
	p.pragmas[c.pragmaName] = on
	if c.pragmaName == "strict" {
		p.strict = on
	}
	return true
}

// Pragmas returns the pragma names seen so far, mapped to their current
// on/off state (true for +name, false for -name). The returned map is a
// copy and safe to retain.
func (p *Parser) Pragmas() map[string]bool {
	out := make(map[string]bool, len(p.pragmas))
	for k, v := range p.pragmas {
		out[k] = v
	}
	return out
}

// tryVersion accepts a `TAP version N` line only when N >= 13, no plan
// has been declared yet, and no test point has been counted yet;
// otherwise it is left for the caller to treat as non-TAP.
func (p *Parser) tryVersion(full string) bool {
	c := classify(full)
	if c.shape != shapeVersion {
		return false
	}
	n, err := strconv.Atoi(c.version)
	if err != nil {
		return false
	}
	if n < 13 || p.hasPlan || p.count > 0 {
		return false
	}
	p.sawValidTAP = true
	p.Handler.version(n)
	return true
}

// tryPlan accepts a `start..end` line only once, flushing any pending
// assertion first. A malformed or repeated plan is left for the caller to
// treat as non-TAP.
func (p *Parser) tryPlan(full string) bool {
	c := classify(full)
	if c.shape != shapePlan {
		return false
	}
	if p.hasPlan {
		return false
	}
	start, err1 := strconv.Atoi(c.planStart)
	end, err2 := strconv.Atoi(c.planEnd)
	if err1 != nil || err2 != nil {
		return false
	}

	p.flushCurrent()

	p.hasPlan = true
	p.planStart = start
	p.planEnd = end
	p.planComment = c.planComment
	p.sawValidTAP = true

	plan := Plan{Start: start, End: end, Comment: c.planComment}
	if start == 1 && end == 0 {
		plan.SkipAll = true
		plan.SkipReason = c.planComment
	}
	p.Handler.plan(plan)

	if p.count > 0 || end == 0 {
		p.postPlan = true
	}
	return true
}

// tryBufferedClose handles a bare "}" arriving as an ordinary unindented
// line rather than via the child-mismatch path: a defensive fallback for
// the structurally rare case where a buffered child has already been
// finalized by some other transition.
func (p *Parser) tryBufferedClose(full string) bool {
	if full != "}" {
		return false
	}
	if p.current == nil || !strings.HasSuffix(strings.TrimRight(p.current.Name, " \t"), "{") {
		return false
	}
	p.closeBuffered()
	return true
}

func (p *Parser) tryTestPoint(full string) bool {
	c := classify(full)
	if c.shape != shapeTestPoint {
		return false
	}
	p.flushCurrent()
	a := p.buildAssertion(c)
	p.sawValidTAP = true
	p.current = &a
	return true
}

// handleNonTAP is the catch-all for a line that matches none of the
// recognized shapes: it flushes whatever assertion was pending (the
// arrival of unrelated content closes that window) and surfaces the line
// as extra data.
func (p *Parser) handleNonTAP(full string) {
	p.flushCurrent()
	p.emitExtra(full)
}

// emitExtra surfaces non-TAP text to the caller. Under the +strict
// pragma, it is additionally recorded as a synthetic failure.
func (p *Parser) emitExtra(s string) {
	p.Handler.extra(s)
	if p.strict {
		p.appendFailure(Assertion{TapError: "Non-TAP data encountered in strict mode", Data: s})
	}
}

func (p *Parser) appendFailure(a Assertion) {
	p.failures = append(p.failures, a)
	p.anyFailure = true
}

// flushCurrent emits and clears any pending assertion, tallying it into
// the running counters, then drains any comments that were queued behind
// it. It is the "close the window" operation invoked at every state
// transition that a pending assertion cannot survive.
func (p *Parser) flushCurrent() {
	if p.current == nil {
		return
	}
	a := *p.current
	p.current = nil

	p.count++
	if a.OK {
		p.pass++
	} else {
		p.fail++
	}
	if a.Todo.Set {
		p.todo++
	}
	if a.Skip.Set {
		p.skip++
	}

	if !p.haveFirst {
		p.first = a.ID
		p.haveFirst = true
	}
	p.last = a.ID

	if (!a.OK && !a.Todo.Set && !a.Skip.Set) || a.TapError != "" {
		p.appendFailure(a)
	}

	p.Handler.assert(a)

	queued := p.commentQueue
	p.commentQueue = nil
	for _, c := range queued {
		p.Handler.comment(c)
	}
}

// drain closes this parser out ahead of computing its summary: it
// finalizes any still-open child, discards (as extra) any still-open
// diagnostic block, and flushes current.
func (p *Parser) drain() {
	if p.child != nil {
		p.finalizeChild()
	}
	if p.diag != nil {
		d := p.diag
		p.diag = nil
		p.emitExtra(d.indent + "---\n" + d.text)
	}
	p.flushCurrent()
}

// finish runs this parser's end-of-stream drain, validates the plan
// against what was actually seen, and emits exactly one OnComplete event.
// Idempotent; used by both End() and child termination.
func (p *Parser) finish() {
	if p.finished {
		return
	}
	p.finished = true

	p.drain()

	summary := p.buildSummary()
	p.Handler.complete(summary)
	if p.onCompleteNotifyParent != nil {
		p.onCompleteNotifyParent(summary)
	}
}
