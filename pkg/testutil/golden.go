// Package testutil compares test output against golden files in testdata.
// Run tests with -update to rewrite the golden files from the current output.
package testutil

import (
	"encoding/json"
	"flag"
	"os"
	"slices"
	"testing"

	"github.com/fpenna/blog-rss/pkg/filesystem"
)

var update = flag.Bool("update", false, "update golden files")

// CompareGolden fails t when actual differs from the golden file content
func CompareGolden(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()

	if *update {
		writeGolden(t, goldenPath, actual)
		return
	}

	expected := readGolden(t, goldenPath)
	if string(actual) != string(expected) {
		t.Errorf("Golden file mismatch for %s\nExpected:\n%s\nActual:\n%s", goldenPath, expected, actual)
	}
}

// CompareGoldenSlice fails t when actual differs from the JSON string array in the golden file
func CompareGoldenSlice(t *testing.T, goldenPath string, actual []string) {
	t.Helper()

	if *update {
		data, err := json.MarshalIndent(actual, "", "  ")
		if err != nil {
			t.Fatalf("Failed to marshal slice to JSON: %v", err)
		}
		writeGolden(t, goldenPath, append(data, '\n'))
		return
	}

	var expected []string
	if err := json.Unmarshal(readGolden(t, goldenPath), &expected); err != nil {
		t.Fatalf("Failed to parse JSON from golden file %s: %v", goldenPath, err)
	}

	if !slices.Equal(actual, expected) {
		t.Errorf("Golden file mismatch for %s\nExpected: %v\nActual: %v", goldenPath, expected, actual)
	}
}

func readGolden(t *testing.T, goldenPath string) []byte {
	t.Helper()

	data, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s (run with -update to create it): %v", goldenPath, err)
	}
	return data
}

func writeGolden(t *testing.T, goldenPath string, data []byte) {
	t.Helper()

	if err := filesystem.EnsureDirectoryExists(goldenPath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		t.Fatalf("Failed to update golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", goldenPath)
}
