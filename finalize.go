package tap

// buildSummary validates the plan against what was actually counted and
// produces the final report (the plan-skip-all, no-plan, and
// count/bounds-mismatch cases), then applies the saw_valid_tap override
// for input that never contained any recognizable TAP at all.
func (p *Parser) buildSummary() Summary {
	s := Summary{
		Count:    p.count,
		Pass:     p.pass,
		Fail:     p.fail,
		Todo:     p.todo,
		Skip:     p.skip,
		Failures: append([]Assertion(nil), p.failures...),
	}
	if p.bailedOut {
		s.HasBailout = true
		s.Bailout = p.bailoutReason
	}

	ok := !p.anyFailure && !p.childForcedFail

	switch {
	case p.hasPlan && p.planStart == 1 && p.planEnd == 0:
		plan := Plan{Start: 1, End: 0, Comment: p.planComment, SkipAll: true, SkipReason: p.planComment}
		s.Plan = &plan
		if p.count > 0 {
			s.Failures = append(s.Failures, Assertion{TapError: "Plan of 1..0, but test points encountered"})
			ok = false
		} else {
			ok = true
		}

	case !p.hasPlan:
		s.Failures = append(s.Failures, Assertion{TapError: "no plan"})
		ok = false

	default:
		plan := Plan{Start: p.planStart, End: p.planEnd, Comment: p.planComment}
		s.Plan = &plan
		if p.count != p.planEnd-p.planStart+1 {
			s.Failures = append(s.Failures, Assertion{TapError: "incorrect number of tests"})
			ok = false
		} else {
			if p.first != p.planStart {
				s.Failures = append(s.Failures, Assertion{TapError: "first test id does not match plan start"})
				ok = false
			}
			if p.last != p.planEnd {
				s.Failures = append(s.Failures, Assertion{TapError: "last test id does not match plan end"})
				ok = false
			}
		}
	}

	if p.bailedOut {
		ok = false
	}
	s.OK = ok

	if !p.sawValidTAP {
		s = Summary{OK: true, Plan: &Plan{Start: 1, End: 0}}
	}

	return s
}
