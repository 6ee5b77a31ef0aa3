// Package shared holds code used across datapulse packages that belongs to
// no single layer.
//
// The testutil subpackage provides a capturing slog handler with assertion
// helpers, and fixture builders for price tables, CSV text and zip archives
// of JSON-lines members:
//
//	logger, handler := testutil.NewTestLogger(t)
//	path := testutil.WriteZip(t, t.TempDir(), "logs.zip",
//	    testutil.Member{Name: "log1.jsonl", Lines: []string{`{"api_method":"GET"}`}})
//	testutil.AssertNoErrors(t, handler)
package shared
