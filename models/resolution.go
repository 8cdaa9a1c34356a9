package models

// ResolutionResult is produced once per top-level resolve call
type ResolutionResult struct {
	SourceURL string
	// InviteCodes found on the terminal page, deduplicated and sorted
	InviteCodes []string
	// RedirectChain lists every page fetched for this resolution in order,
	// the source URL included
	RedirectChain []string
	Err           *ResolveError
}
