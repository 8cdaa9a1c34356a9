package helpers

import (
	"net/url"
	"strings"
)

// EnsureScheme prefixes scheme-less links so they can be fetched
func EnsureScheme(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	return "https://" + link
}

// HostOfURL returns the lower-cased host of $link, without the port
func HostOfURL(link string) string {
	u, err := url.Parse(EnsureScheme(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
