package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "datapulse/internal/errors"
	"datapulse/internal/shared/testutil"
)

func newValidator(t *testing.T) (*FileValidator, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewFileValidator(logger), handler
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		pattern  string
		wantType apperrors.ErrorType
	}{
		{
			name: "directory with archives",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.zip"), []byte("x"), 0o644))
				return dir
			},
			pattern: "*.zip",
		},
		{
			name:    "directory without matches",
			setup:   func(t *testing.T) string { return t.TempDir() },
			pattern: "*.zip",
		},
		{
			name:     "missing directory",
			setup:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") },
			wantType: apperrors.ErrTypeMissingInput,
		},
		{
			name: "file instead of directory",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file.txt")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
				return path
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newValidator(t)

			err := v.ValidateInputDirectory(tt.setup(t), tt.pattern)

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v, _ := newValidator(t)
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err := v.ValidateOutputDirectory(filepath.Join(blocker, "sub"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v, handler := newValidator(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(file, []byte("Date\n"), 0o644))

	assert.NoError(t, v.ValidateFile(file))
	assert.True(t, apperrors.IsType(v.ValidateFile(dir), apperrors.ErrTypeValidation))

	err := v.ValidateFile(filepath.Join(dir, "absent.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
	testutil.AssertLogContains(t, handler, slog.LevelError, "File does not exist")
}

func TestFileValidator_ValidateTableFormat(t *testing.T) {
	v, _ := newValidator(t)

	for _, ok := range []string{"a.csv", "A.CSV", "b.xlsx", "c.xlsm", "d.txt", "missing/but/fine.csv"} {
		assert.NoError(t, v.ValidateTableFormat(ok), ok)
	}
	for _, bad := range []string{"a.zip", "noext", "~$book.xlsx"} {
		assert.Error(t, v.ValidateTableFormat(bad), bad)
	}
}

func TestFileValidator_ValidateArchiveFile(t *testing.T) {
	v, _ := newValidator(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "logs.zip")
	other := filepath.Join(dir, "logs.tar")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	assert.NoError(t, v.ValidateArchiveFile(archive))
	assert.True(t, apperrors.IsType(v.ValidateArchiveFile(other), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(v.ValidateArchiveFile(filepath.Join(dir, "none.zip")), apperrors.ErrTypeMissingInput))
}

func TestFileValidator_CountFiles(t *testing.T) {
	v, _ := newValidator(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zip"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zip"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.zip"), 0o755))

	n, err := v.CountFiles(dir, "*.zip")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = v.CountFiles(dir, "[")
	assert.Error(t, err)
}
