package tap

import "strings"

// YAMLLoader is the external, out-of-scope-per-spec YAML deserializer: a
// pure function from text to a parsed document or an error. The parser
// treats any error as "not YAML", never as fatal (§6, §7.4).
type YAMLLoader func(text string) (map[string]interface{}, error)

// diagBlock tracks an in-progress diagnostic block attached to the
// previous assertion (§4.D).
type diagBlock struct {
	indent string
	text   string
}

// openDiagnostic opens a diagnostic block at the given indent, following a
// `<indent>---` line. Only called while p.current is set.
func (p *Parser) openDiagnostic(indent string) {
	p.diag = &diagBlock{indent: indent}
}

// handleDiagLine processes one line while a diagnostic block is open: it
// either extends the block, closes it (on a matching "..."), or breaks it
// (reassembling the buffered text as non-TAP extra and reprocessing the
// breaking line).
func (p *Parser) handleDiagLine(full string) {
	d := p.diag
	if strings.HasPrefix(full, d.indent) {
		body := full[len(d.indent):]
		if body == "..." {
			p.closeDiagnostic()
			return
		}
		d.text += body + "\n"
		return
	}
	p.breakDiagnostic(full)
}

// closeDiagnostic hands the accumulated block text to the YAML loader. On
// success the document is attached to current and current is flushed; on
// failure the whole block (reassembled with its "---" framing) is emitted
// as non-TAP extra instead, and current is left pending.
func (p *Parser) closeDiagnostic() {
	d := p.diag
	p.diag = nil

	doc, err := p.yamlLoader(d.text)
	if err != nil {
		p.emitExtra(d.indent + "---\n" + d.text)
		return
	}
	if p.current != nil {
		p.current.Diag = doc
	}
	p.flushCurrent()
}

// breakDiagnostic is invoked when a line doesn't match the open block's
// indent/closing-marker rules. The block is reassembled and surfaced as
// extra data, and the breaking line is reprocessed through the normal
// dispatch (the block is now closed).
func (p *Parser) breakDiagnostic(full string) {
	d := p.diag
	p.diag = nil
	p.emitExtra(d.indent + "---\n" + d.text + full)
	p.dispatchContent(full)
}
