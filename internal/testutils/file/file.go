package testfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTempFileWithContent creates file with the content in the temporary
// directory of the test and returns the path of the file.
func CreateTempFileWithContent(t testing.TB, fileName string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), "failed to create test file '%s'", path)
	return path
}
