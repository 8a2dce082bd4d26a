package tap

import "testing"

func TestSplitDirective(t *testing.T) {
	cases := []struct {
		in        string
		name      string
		directive string
		found     bool
	}{
		{"boom", "boom", "", false},
		{"boom # TODO later", "boom ", " TODO later", true},
		{"name with \\# escaped hash", "name with \\# escaped hash", "", false},
		{"name \\\\# real hash after escaped backslash", "name \\\\", " real hash after escaped backslash", true},
	}
	for _, c := range cases {
		name, directive, found := splitDirective(c.in)
		if name != c.name || directive != c.directive || found != c.found {
			t.Errorf("splitDirective(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.in, name, directive, found, c.name, c.directive, c.found)
		}
	}
}

func TestParseTimeDirective(t *testing.T) {
	if ms, ok := parseTimeDirective("time=150ms"); !ok || ms != 150 {
		t.Errorf("parseTimeDirective(time=150ms) = (%v, %v)", ms, ok)
	}
	if ms, ok := parseTimeDirective("time=1.5s"); !ok || ms != 1500 {
		t.Errorf("parseTimeDirective(time=1.5s) = (%v, %v)", ms, ok)
	}
	if _, ok := parseTimeDirective("not a time"); ok {
		t.Errorf("parseTimeDirective matched non-time text")
	}
}

func TestParseTestPointRestDirectives(t *testing.T) {
	name, todo, skip, ms, hasTime := parseTestPointRest("hello # TODO not yet implemented")
	if name != "hello" || !todo.Set || todo.Reason != "not yet implemented" || skip.Set || hasTime {
		t.Errorf("parseTestPointRest(TODO) = name=%q todo=%+v skip=%+v ms=%v hasTime=%v", name, todo, skip, ms, hasTime)
	}

	name, todo, skip, ms, hasTime = parseTestPointRest("world # SKIP waiting on fixture")
	if name != "world" || !skip.Set || skip.Reason != "waiting on fixture" || todo.Set || hasTime {
		t.Errorf("parseTestPointRest(SKIP) = name=%q todo=%+v skip=%+v ms=%v hasTime=%v", name, todo, skip, ms, hasTime)
	}

	name, todo, skip, ms, hasTime = parseTestPointRest("quick # time=42ms")
	if name != "quick" || !hasTime || ms != 42 || todo.Set || skip.Set {
		t.Errorf("parseTestPointRest(time) = name=%q ms=%v hasTime=%v", name, ms, hasTime)
	}

	name, _, _, _, hasTime = parseTestPointRest("tagged # not-a-directive")
	if name != "tagged # not-a-directive" || hasTime {
		t.Errorf("parseTestPointRest(unrecognized directive) = name=%q", name)
	}
}
