// Package shared holds cross-cutting helpers that belong to no single
// domain layer. Today that is the testutil subpackage: a buffered slog
// handler that captures records so tests across the codebase can assert on
// log output.
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//
//	    // Exercise code with logger, then assert on logs.
//	    assert.True(t, logs.ContainsMessage("done"))
//	}
//
// Nothing here may depend on other internal packages; the helpers stay
// generic so every layer can import them without cycles.
package shared
