package debug

import (
	"strings"
	"testing"
)

func TestReadBuildInfo(t *testing.T) {
	info := ReadBuildInfo()
	if info == "" {
		t.Skip("binary has no build info")
	}
	if !strings.HasPrefix(info, "version=") {
		t.Errorf("expected build info to start with the version, got %q", info)
	}
}
