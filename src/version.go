package pppos

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via `-ldflags "-X 'github.com/DJM595079527/lwip/src.PPPOS_VERSION=X'"`
var PPPOS_VERSION string

func getBuildSettingOrDefault(bi *debug.BuildInfo, key string, defaultValue string) string {
	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

func printVersion() {
	var buildInfo, _ = debug.ReadBuildInfo()

	var buildTimeStr = getBuildSettingOrDefault(buildInfo, "vcs.time", "UNKNOWN")
	var buildCommit = getBuildSettingOrDefault(buildInfo, "vcs.revision", "UNKNOWN")

	var version = PPPOS_VERSION
	if version == "" {
		version = "!UNKNOWN!"
	}

	fmt.Printf("PPPoS tools - Version %s (revision %s, built at %s)\n", version, buildCommit, buildTimeStr)
}
