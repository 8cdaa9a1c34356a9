package helpers

import "regexp"

var (
	// InviteReferenceRegex matches a Discord invite reference in page text or markup.
	// The token run is captured greedily so that overlong tokens can be rejected
	// instead of truncated, see discord#ExtractInviteCodes().
	InviteReferenceRegex = regexp.MustCompile(`(?:discord\.gg|discord(?:app)?\.com/invite)/([a-zA-Z0-9-]+)`)

	// IntermediaryHostRegex matches invite landing services which hide the
	// terminal invite behind a short link of their own
	IntermediaryHostRegex = regexp.MustCompile(`^(?:www\.)?(?:dsc\.gg|invite\.gg|discord\.me|discord\.io|discord\.li|discord\.plus)$`)
)
