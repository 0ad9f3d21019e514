package testutil

import (
	"os"
	"testing"
)

// SkipIfShort skips exhaustive tests (large random drafts, full catalog
// sweeps) under -short or when WEAVER_TEST_SHORT is set.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("WEAVER_TEST_SHORT") != "" {
		t.Skip("skipping exhaustive test in short mode")
	}
}
