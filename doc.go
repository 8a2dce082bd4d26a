/*
Package tap implements a streaming parser for the Test Anything Protocol
(TAP), the line-oriented textual format emitted by test harnesses.

The parser ingests TAP text as a byte stream of arbitrary chunking and
produces a structured stream of events: test-point assertions, diagnostic
(YAML) payloads, plan declarations, comments, version announcements,
pragmas, bailouts, non-TAP "extra" data, and a final summary. Subtests
(indented or brace-delimited nested TAP output) are represented as a
recursive tree of child Parsers.

The full protocol specification can be found at the following URL:

https://testanything.org/tap-version-13-specification.html
*/
package tap
