package debug

import (
	"runtime/debug"
	"strings"
)

/*
ReadBuildInfo returns the main module version and the version control
settings the binary was built with, as space separated key=value pairs.
*/
func ReadBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	data := []string{"version=" + info.Main.Version}
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			data = append(data, s.Key+"="+s.Value)
		}
	}
	return strings.Join(data, " ")
}
