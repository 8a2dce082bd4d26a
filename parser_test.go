package tap_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapstream/tap"
)

// collector records every event a Parser emits except OnLine, in order, for
// assertions against exact event sequences.
type collector struct {
	versions  []int
	plans     []tap.Plan
	asserts   []tap.Assertion
	comments  []string
	extras    []string
	children  []*tap.Parser
	bailouts  []string
	summaries []tap.Summary
}

func (c *collector) handler() tap.Handler {
	return tap.Handler{
		OnVersion:  func(v int) { c.versions = append(c.versions, v) },
		OnPlan:     func(p tap.Plan) { c.plans = append(c.plans, p) },
		OnAssert:   func(a tap.Assertion) { c.asserts = append(c.asserts, a) },
		OnComment:  func(s string) { c.comments = append(c.comments, s) },
		OnExtra:    func(s string) { c.extras = append(c.extras, s) },
		OnChild:    func(p *tap.Parser) { c.children = append(c.children, p) },
		OnBailout:  func(s string) { c.bailouts = append(c.bailouts, s) },
		OnComplete: func(s tap.Summary) { c.summaries = append(c.summaries, s) },
	}
}

func parseAll(t *testing.T, input string) *collector {
	t.Helper()
	c := &collector{}
	p := tap.New(tap.WithHandler(c.handler()))
	_, err := p.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, p.End())
	return c
}

func TestMinimalPassing(t *testing.T) {
	c := parseAll(t, "TAP version 13\n1..1\nok 1 - hello\n")

	assert.Equal(t, []int{13}, c.versions)
	assert.Equal(t, []tap.Plan{{Start: 1, End: 1}}, c.plans)
	require.Len(t, c.asserts, 1)
	assert.True(t, c.asserts[0].OK)
	assert.Equal(t, 1, c.asserts[0].ID)
	assert.Equal(t, "hello", c.asserts[0].Name)

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.True(t, s.OK)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 1, s.Pass)
	assert.Empty(t, s.Failures)
	assert.Equal(t, &tap.Plan{Start: 1, End: 1}, s.Plan)
}

func TestFailureWithDiagnostic(t *testing.T) {
	c := parseAll(t, "1..1\nnot ok 1 - boom\n  ---\n  got: 1\n  want: 2\n  ...\n")

	require.Len(t, c.asserts, 1)
	a := c.asserts[0]
	assert.False(t, a.OK)
	assert.Equal(t, "boom", a.Name)
	if diff := cmp.Diff(map[string]interface{}{"got": 1, "want": 2}, a.Diag); diff != "" {
		t.Errorf("diag mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.False(t, s.OK)
	assert.Equal(t, 1, s.Fail)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "boom", s.Failures[0].Name)
}

func TestSkipAllPlan(t *testing.T) {
	c := parseAll(t, "1..0 # nothing to do\n")

	require.Len(t, c.plans, 1)
	assert.True(t, c.plans[0].SkipAll)
	assert.Equal(t, "nothing to do", c.plans[0].SkipReason)

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.True(t, s.OK)
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Plan.SkipAll)
}

func TestBailoutMidStream(t *testing.T) {
	c := parseAll(t, "1..3\nok 1\nBail out! kaboom\nok 2\n")

	require.Len(t, c.asserts, 1)
	assert.True(t, c.asserts[0].OK)
	assert.Equal(t, []string{"kaboom"}, c.bailouts)

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.False(t, s.OK)
	assert.Equal(t, 1, s.Count)
	assert.True(t, s.HasBailout)
	assert.Equal(t, "kaboom", s.Bailout)
}

func TestStreamedChild(t *testing.T) {
	c := parseAll(t, "1..1\n    1..1\n    ok 1 - inner\nok 1 - outer\n")

	require.Len(t, c.children, 1)

	require.Len(t, c.asserts, 1)
	assert.Equal(t, "outer", c.asserts[0].Name)

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.True(t, s.OK)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 1, s.Pass)
}

func TestStreamedChildNestedEvents(t *testing.T) {
	// Wire the nested Reporter/Handler *before* parsing this time, via a
	// parser constructed so OnChild attaches a collector synchronously.
	outer := &collector{}
	var inner *collector

	p := tap.New(tap.WithHandler(tap.Handler{
		OnVersion: outer.handler().OnVersion,
		OnPlan:    outer.handler().OnPlan,
		OnAssert:  outer.handler().OnAssert,
		OnComplete: outer.handler().OnComplete,
		OnChild: func(child *tap.Parser) {
			inner = &collector{}
			child.Handler = inner.handler()
		},
	}))
	_, err := p.WriteString("1..1\n    1..1\n    ok 1 - inner\nok 1 - outer\n")
	require.NoError(t, err)
	require.NoError(t, p.End())

	require.NotNil(t, inner)
	require.Len(t, inner.asserts, 1)
	assert.Equal(t, "inner", inner.asserts[0].Name)
	require.Len(t, inner.summaries, 1)
	assert.True(t, inner.summaries[0].OK)

	require.Len(t, outer.asserts, 1)
	assert.Equal(t, "outer", outer.asserts[0].Name)
}

func TestBufferedChildClosesAndTrimsName(t *testing.T) {
	c := parseAll(t, "1..1\nok 1 - subtest {\n    1..1\n    ok 1 - nested\n}\n")

	require.Len(t, c.children, 1)

	require.Len(t, c.asserts, 1)
	assert.Equal(t, "subtest", c.asserts[0].Name)

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.True(t, s.OK)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 1, s.Pass)
}

func TestPlanCountMismatch(t *testing.T) {
	c := parseAll(t, "1..3\nok 1\nok 2\n")

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.False(t, s.OK)
	require.NotEmpty(t, s.Failures)
	found := false
	for _, f := range s.Failures {
		if f.TapError == "incorrect number of tests" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEmptyInput(t *testing.T) {
	c := parseAll(t, "")

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.True(t, s.OK)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, &tap.Plan{Start: 1, End: 0}, s.Plan)
	assert.Empty(t, s.Failures)
}

func TestNonTAPOnlyInput(t *testing.T) {
	c := parseAll(t, "this is just some log noise\nnothing TAP about it\n")

	require.Len(t, c.summaries, 1)
	assert.True(t, c.summaries[0].OK)
	assert.Len(t, c.extras, 2)
}

func TestTodoAndSkipDirectives(t *testing.T) {
	c := parseAll(t, "1..2\nnot ok 1 - broken # TODO fix later\nok 2 - skipped # SKIP not ready\n")

	require.Len(t, c.asserts, 2)
	assert.True(t, c.asserts[0].Todo.Set)
	assert.Equal(t, "fix later", c.asserts[0].Todo.Reason)
	assert.True(t, c.asserts[1].Skip.Set)
	assert.Equal(t, "not ready", c.asserts[1].Skip.Reason)

	s := c.summaries[0]
	assert.True(t, s.OK, "todo/skip failures must not flip ok to false")
	assert.Equal(t, 1, s.Todo)
	assert.Equal(t, 1, s.Skip)
}

func TestStrictModeFlagsNonTAP(t *testing.T) {
	c := &collector{}
	p := tap.New(tap.WithHandler(c.handler()), tap.WithStrict(true))
	_, err := p.WriteString("1..1\nok 1\nunexpected banner\n")
	require.NoError(t, err)
	require.NoError(t, p.End())

	require.Len(t, c.summaries, 1)
	s := c.summaries[0]
	assert.False(t, s.OK)
	require.NotEmpty(t, s.Failures)
	assert.Equal(t, "Non-TAP data encountered in strict mode", s.Failures[len(s.Failures)-1].TapError)
}

func TestCommentsQueueBehindPendingAssertion(t *testing.T) {
	c := parseAll(t, "1..1\nok 1 - hello\n# a trailing comment\n")

	require.Len(t, c.asserts, 1)
	require.Len(t, c.comments, 1)
	assert.Equal(t, "# a trailing comment", c.comments[0])
}

func TestWriteAfterEndFails(t *testing.T) {
	p := tap.New()
	require.NoError(t, p.End())
	_, err := p.Write([]byte("ok 1\n"))
	assert.ErrorIs(t, err, tap.ErrClosed)
}

func TestCRLFNormalized(t *testing.T) {
	c := parseAll(t, "1..1\r\nok 1 - hello\r\n")
	require.Len(t, c.asserts, 1)
	assert.Equal(t, "hello", c.asserts[0].Name)
}
