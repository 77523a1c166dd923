package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	result := VerifyFileExistsStrategy(path)
	assert.True(t, result.Passed)
	assert.Equal(t, SeverityInfo, result.Severity)

	missing := VerifyFileExistsStrategy(filepath.Join(dir, "missing.txt"))
	assert.False(t, missing.Passed)
	assert.Equal(t, SeverityError, missing.Severity)
}

func TestVerifyFileContentContains(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("End-to-End Test Successful"), 0o644))

	result := VerifyFileContentContainsStrategy(path, "Test Successful")
	assert.True(t, result.Passed)

	mismatch := VerifyFileContentContainsStrategy(path, "nope")
	assert.False(t, mismatch.Passed)
	assert.Contains(t, mismatch.Message, "content mismatch")
}

func TestVerifyFileContentContainsTruncatesPreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	longContent := ""
	for i := 0; i < 100; i++ {
		longContent += "x"
	}
	require.NoError(t, os.WriteFile(path, []byte(longContent), 0o644))

	result := VerifyFileContentContainsStrategy(path, "not present")
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "...")
}

func TestVerifyFileDoesNotExist(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")

	result := VerifyFileDoesNotExistStrategy(missing)
	assert.True(t, result.Passed)

	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))
	failed := VerifyFileDoesNotExistStrategy(present)
	assert.False(t, failed.Passed)
}

func TestVerifyToolOutputSuccess(t *testing.T) {
	assert.True(t, VerifyToolOutputSuccessStrategy("Wrote 3 lines to disk.").Passed)
	assert.False(t, VerifyToolOutputSuccessStrategy("Error: permission denied").Passed)
	assert.False(t, VerifyToolOutputSuccessStrategy("Operation failed unexpectedly").Passed)
	assert.False(t, VerifyToolOutputSuccessStrategy("Caught Exception during write").Passed)
}

func TestRunDispatchesByName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	result := Run(VerifyFileExists, map[string]string{"path": path})
	assert.True(t, result.Passed)
}

func TestRunFallsBackToToolOutputSuccessOnUnknownStrategy(t *testing.T) {
	result := Run(StrategyName("not_a_real_strategy"), map[string]string{"previous_output": "all good"})
	assert.True(t, result.Passed)
}
