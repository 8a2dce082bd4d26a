package tap

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	timeRe     = regexp.MustCompile(`^time=([0-9]+(?:\.[0-9]+)?)(ms|s)$`)
	todoSkipRe = regexp.MustCompile(`(?i)^(todo|skip)\b(.*)$`)
)

// splitDirective finds the first "#" in rest that is not escaped by
// backslashes -- a "#" is a directive separator iff it is immediately
// preceded by an even number (including zero) of backslashes. Implemented
// as an explicit scanner rather than a single regex so the escape counting
// stays auditable (spec Design Notes §9).
func splitDirective(rest string) (name string, directive string, found bool) {
	backslashes := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			backslashes++
		case '#':
			if backslashes%2 == 0 {
				return rest[:i], rest[i+1:], true
			}
			backslashes = 0
		default:
			backslashes = 0
		}
	}
	return rest, "", false
}

// parseTimeDirective recognizes "time=<number><ms|s>". A seconds value is
// converted to milliseconds via a fixed-point dance (scale to microseconds,
// round, scale back down) so the result is deterministic across platforms
// instead of drifting with float rounding.
func parseTimeDirective(text string) (ms float64, ok bool) {
	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "s" {
		micros := math.Round(val * 1e6)
		return micros / 1e3, true
	}
	return val, true
}

// parseTestPointRest splits the portion of a test-point line following the
// id/dash (§4.C's "rest") into a name and any attached directive fields,
// per §4.B.
func parseTestPointRest(rest string) (name string, todo, skip Directive, timeMS float64, hasTime bool) {
	head, directive, found := splitDirective(rest)
	if !found {
		return strings.TrimSpace(head), todo, skip, 0, false
	}

	trimmed := strings.TrimSpace(directive)

	if t, ok := parseTimeDirective(trimmed); ok {
		return strings.TrimSpace(head), todo, skip, t, true
	}

	if m := todoSkipRe.FindStringSubmatch(trimmed); m != nil {
		reason := strings.TrimSpace(m[2])
		d := Directive{Set: true, Reason: reason}
		if strings.EqualFold(m[1], "todo") {
			todo = d
		} else {
			skip = d
		}
		return strings.TrimSpace(head), todo, skip, 0, false
	}

	// Not a recognized directive: it was part of the name all along.
	name = strings.TrimSpace(head + "#" + directive)
	return name, todo, skip, 0, false
}
