package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/Seklfreak/discord-invite-finder/cache"
	"github.com/Seklfreak/discord-invite-finder/helpers"
)

var (
	// SearchRequests increases after each discovery request
	SearchRequests = expvar.NewInt("search_requests")

	// ResolutionsStarted increases for every candidate url handed to the resolver
	ResolutionsStarted = expvar.NewInt("resolutions_started")

	// InvitesFound counts all terminal invite codes ever extracted
	InvitesFound = expvar.NewInt("invites_found")

	// ResolveErrors counts failed resolutions
	ResolveErrors = expvar.NewInt("resolve_errors")

	// InviteLookups increases after each invite api request
	InviteLookups = expvar.NewInt("invite_lookups")

	// CoroutineCount counts all running coroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the finder's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts a http server on $metrics_ip:1337
func Init() {
	cache.GetLogger().WithField("module", "metrics").Info("Listening on TCP/1337")
	Uptime.Set(time.Now().Unix())

	go http.ListenAndServe(helpers.GetConfig().Path("metrics_ip").Data().(string)+":1337", nil)
	go CollectRuntimeMetrics()
}

// CollectRuntimeMetrics counts all running coroutines
func CollectRuntimeMetrics() {
	for {
		time.Sleep(15 * time.Second)
		CoroutineCount.Set(int64(runtime.NumGoroutine()))
	}
}
