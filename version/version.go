package version

import "github.com/Seklfreak/discord-invite-finder/cache"

// Version related vars
// Set by compiler
var (
	// FINDER_VERSION example: 0.2.1-4-g205bbb8
	FINDER_VERSION string = "DEV_SNAPSHOT"

	// BUILD_TIME example: Fri Jan  6 00:45:46 CET 2017
	BUILD_TIME string = "UNSET"

	// BUILD_USER example: sn0w
	BUILD_USER string = "UNSET"

	// BUILD_HOST example: nepgear
	BUILD_HOST string = "UNSET"
)

// DumpInfo dumps all above vars
func DumpInfo() {
	cache.GetLogger().WithField("module", "version").Debug("FINDER VERSION: " + FINDER_VERSION)
	cache.GetLogger().WithField("module", "version").Debug("BUILD TIME: " + BUILD_TIME)
	cache.GetLogger().WithField("module", "version").Debug("BUILD USER: " + BUILD_USER)
	cache.GetLogger().WithField("module", "version").Debug("BUILD HOST: " + BUILD_HOST)
}
