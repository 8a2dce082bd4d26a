package tap

// wireChildHooks connects a freshly constructed child back to its parent:
// a bailout inside the child propagates synchronously to the parent with
// the same reason, and a child that completes not-ok forces the parent's
// own summary to not-ok too, once the parent has seen any valid TAP of
// its own.
func (p *Parser) wireChildHooks(child *Parser) {
	child.onBailoutPropagate = func(reason string) { p.doBailout(reason) }
	child.onCompleteNotifyParent = func(s Summary) {
		if !s.OK && p.sawValidTAP {
			p.childForcedFail = true
		}
	}
}

// spawnStreamedChild opens a nested parser for an indented subtest whose
// extent is discovered by dedent (no buffered Name suffix), flushing any
// assertion that was pending at this level first.
func (p *Parser) spawnStreamedChild(leading, rest string) {
	p.flushCurrent()

	child := New(WithYAMLLoader(p.yamlLoader), withIndent(leading))
	p.wireChildHooks(child)
	p.child = child
	p.Handler.child(child)
	child.ingestLine(rest)
}

// spawnBufferedChild opens a nested parser for a subtest introduced by a
// `name {`-suffixed assertion; that assertion stays pending (current) as
// "buffered" until the child's closing "}" is seen.
func (p *Parser) spawnBufferedChild(leading, rest string) {
	child := New(WithYAMLLoader(p.yamlLoader), withIndent(leading), withBuffered(p.current))
	p.wireChildHooks(child)
	p.child = child
	p.Handler.child(child)
	child.ingestLine(rest)
}

// finalizeChild runs the open child's own end-of-stream drain and clears
// it from this parser.
func (p *Parser) finalizeChild() {
	if p.child == nil {
		return
	}
	p.child.finish()
	p.child = nil
}
