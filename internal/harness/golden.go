package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, verifies its assertions, and
// compares the recorded platform trace against a golden file at
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The golden trace pins the exact sequence of outbound platform calls
// for a timeline, so an extra removal, a duplicated prompt, or a second
// mark-read shows up as a diff even when the assertions still hold.
func RunWithGolden(t *testing.T, h *Harness, sc *Scenario) {
	t.Helper()

	ctx := t.Context()
	if err := h.Execute(ctx, sc); err != nil {
		t.Fatalf("scenario execution failed: %v", err)
	}
	for _, failure := range h.Verify(ctx, sc) {
		t.Errorf("scenario %s: %v", sc.Name, failure)
	}

	trace := strings.Join(h.Client.TraceStrings(), "\n") + "\n"

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, []byte(trace))
}
