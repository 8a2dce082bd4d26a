package tap

// Directive represents a trailing `# TODO <reason>` or `# SKIP <reason>`
// modifier on a test point. Set is true whenever the directive was present;
// Reason is empty when no reason text followed the directive keyword (the
// `true` case in the spec's `string|true` field).
type Directive struct {
	Set    bool
	Reason string
}

// Plan is a declared test-point id range, optionally carrying a skip-all
// reason (a `1..0 # reason` line).
type Plan struct {
	Start      int
	End        int
	Comment    string
	SkipAll    bool
	SkipReason string
}

// Assertion is the result of a single test point.
type Assertion struct {
	OK       bool
	ID       int
	Name     string
	Todo     Directive
	Skip     Directive
	TimeMS   float64
	HasTime  bool
	Diag     map[string]interface{}
	TapError string

	// Data holds the offending text for the synthetic failure record
	// synthesized when strict mode encounters non-TAP data (§7.2). It is
	// empty for every ordinary test-point assertion.
	Data string
}

// Summary is the final, end-of-stream report for a parser (root or child).
type Summary struct {
	OK         bool
	Count      int
	Pass       int
	Fail       int
	Todo       int
	Skip       int
	Bailout    string
	HasBailout bool
	Plan       *Plan
	Failures   []Assertion
}

// Handler is the set of callbacks a caller may register to receive the
// parser's event stream. Any field left nil is simply never called; there
// is no requirement to handle every event. A Handler is normally supplied
// at construction via an Option (see WithHandler); as an exported field of
// Parser it can also be assigned afterwards, which is how an OnChild
// callback wires up a freshly spawned child -- the spec treats the
// event-delivery mechanism itself as an external, out-of-scope transport,
// so this is the plain, dependency-free Go equivalent: a struct of typed
// callbacks, in the same spirit as http.Transport's RoundTripper hooks or
// bufio.Scanner's SplitFunc.
type Handler struct {
	OnLine     func(line string)
	OnVersion  func(version int)
	OnPlan     func(plan Plan)
	OnAssert   func(a Assertion)
	OnComment  func(line string)
	OnExtra    func(data string)
	OnChild    func(child *Parser)
	OnBailout  func(reason string)
	OnComplete func(summary Summary)
}

func (h Handler) line(s string) {
	if h.OnLine != nil {
		h.OnLine(s)
	}
}

func (h Handler) version(v int) {
	if h.OnVersion != nil {
		h.OnVersion(v)
	}
}

func (h Handler) plan(p Plan) {
	if h.OnPlan != nil {
		h.OnPlan(p)
	}
}

func (h Handler) assert(a Assertion) {
	if h.OnAssert != nil {
		h.OnAssert(a)
	}
}

func (h Handler) comment(s string) {
	if h.OnComment != nil {
		h.OnComment(s)
	}
}

func (h Handler) extra(s string) {
	if h.OnExtra != nil {
		h.OnExtra(s)
	}
}

func (h Handler) child(c *Parser) {
	if h.OnChild != nil {
		h.OnChild(c)
	}
}

func (h Handler) bailout(reason string) {
	if h.OnBailout != nil {
		h.OnBailout(reason)
	}
}

func (h Handler) complete(s Summary) {
	if h.OnComplete != nil {
		h.OnComplete(s)
	}
}
