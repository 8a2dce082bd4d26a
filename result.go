package tap

import "strconv"

// buildAssertion constructs an Assertion record from a classified
// test-point line and the parser's ambient counter/plan state (§4.C).
func (p *Parser) buildAssertion(c classified) Assertion {
	a := Assertion{OK: !c.negated}

	if n, err := strconv.Atoi(c.id); err == nil && c.id != "" {
		a.ID = n
	} else {
		a.ID = p.count + 1
	}

	name, todo, skip, timeMS, hasTime := parseTestPointRest(c.rest)
	a.Name = name
	a.Todo = todo
	a.Skip = skip
	a.TimeMS = timeMS
	a.HasTime = hasTime

	if p.hasPlan {
		switch {
		case a.ID < p.planStart:
			a.TapError = "id less than plan start"
		case a.ID > p.planEnd:
			a.TapError = "id greater than plan end"
		}
	}

	return a
}
