package models

// Page is the fetched representation of a single URL, owned by the fetch
// call that produced it
type Page struct {
	// URL the fetch was asked for
	URL string
	// EffectiveURL after transport-level redirects
	EffectiveURL string
	StatusCode   int
	Body         []byte
}
