package cache

import "time"

// Per-domain TTL policy. A zero duration means the record never expires on
// its own; it is only replaced or explicitly invalidated.
const (
	// Profile is long-lived: it only changes when the user edits it, so it
	// is refreshed explicitly and the TTL is a backstop.
	profileTTL = 24 * time.Hour

	// Stats sub-blobs go stale quickly as new plays land.
	statsTTL = time.Hour

	// Another user's profile, per viewer+subject pair.
	socialTTL = 5 * time.Minute

	milestonesTTL = time.Hour
	friendsTTL    = 5 * time.Minute
)

// statKind distinguishes the independently-keyed stats sub-blobs. The hourly
// blob is additionally hour-scoped: it hits only while the wall-clock hour
// matches the hour it was cached in.
type statKind string

const (
	statHourly      statKind = "hourly"
	statDaily       statKind = "daily"
	statDiscoveries statKind = "discoveries"
	statWeekly      statKind = "weekly"
)

var statKinds = []statKind{statHourly, statDaily, statDiscoveries, statWeekly}
