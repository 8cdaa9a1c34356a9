package intermediary

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Seklfreak/discord-invite-finder/discord"
	"github.com/Seklfreak/discord-invite-finder/helpers"
	"github.com/Seklfreak/discord-invite-finder/models"
	"mvdan.cc/xurls"
)

// FetchFunc loads a page, see helpers#FetchPage()
type FetchFunc func(pageUrl string, timeout time.Duration) (*models.Page, error)

const (
	// DefaultMaxDepth bounds the pages fetched per resolution, a chain
	// deeper than this is malformed or adversarial
	DefaultMaxDepth = 5

	DefaultHopTimeout = 15 * time.Second

	// DefaultDeadline bounds the wall clock across all hops of one resolution
	DefaultDeadline = 60 * time.Second
)

// Resolver follows candidate pages to their terminal invite codes
type Resolver struct {
	Fetch      FetchFunc
	MaxDepth   int
	HopTimeout time.Duration
	Deadline   time.Duration
}

// NewResolver allocates a Resolver backed by the shared http client
func NewResolver() *Resolver {
	return &Resolver{
		Fetch:      helpers.FetchPage,
		MaxDepth:   DefaultMaxDepth,
		HopTimeout: DefaultHopTimeout,
		Deadline:   DefaultDeadline,
	}
}

// Resolve fetches $pageUrl and returns all terminal invite codes. A page
// without direct codes but with exactly one outbound link to a known invite
// landing service is treated as an intermediary and followed, up to MaxDepth
// pages per resolution. Absence of an invite yields an empty result, not an
// error. Any hop failure aborts the whole resolution, tagged with the hop URL.
func (r *Resolver) Resolve(pageUrl string) (*models.ResolutionResult, error) {
	result := &models.ResolutionResult{SourceURL: pageUrl}

	codes, err := r.resolve(pageUrl, 0, time.Now(), result)
	if err != nil {
		resolveErr, ok := err.(*models.ResolveError)
		if !ok {
			resolveErr = &models.ResolveError{Kind: models.ErrorKindNetwork, URL: pageUrl, Err: err}
		}
		result.Err = resolveErr
		return result, resolveErr
	}

	sort.Strings(codes)
	result.InviteCodes = codes
	return result, nil
}

func (r *Resolver) resolve(pageUrl string, depth int, started time.Time, result *models.ResolutionResult) ([]string, error) {
	if r.Deadline > 0 && time.Since(started) > r.Deadline {
		return nil, &models.ResolveError{Kind: models.ErrorKindTimeout, URL: pageUrl}
	}

	result.RedirectChain = append(result.RedirectChain, pageUrl)

	page, err := r.Fetch(pageUrl, r.HopTimeout)
	if err != nil {
		if _, ok := err.(*models.ResolveError); !ok {
			err = &models.ResolveError{Kind: models.ErrorKindNetwork, URL: pageUrl, Err: err}
		}
		return nil, err
	}

	// direct codes win, the intermediary link is not chased
	codes := discord.ExtractInviteCodes(string(page.Body))
	if len(codes) > 0 {
		return codes, nil
	}

	candidates := intermediaryLinks(page.Body)
	if len(candidates) != 1 {
		// no candidate means the invite is simply absent, more than one
		// means the page is ambiguous, neither is an error
		return nil, nil
	}

	if depth+1 >= r.MaxDepth {
		return nil, &models.ResolveError{Kind: models.ErrorKindTooManyRedirects, URL: candidates[0]}
	}

	return r.resolve(candidates[0], depth+1, started, result)
}

// intermediaryLinks returns the distinct outbound links of a page which point
// at a known invite landing service, collected from both the raw text and the
// anchor tags
func intermediaryLinks(body []byte) (links []string) {
	seen := make(map[string]bool)

	add := func(link string) {
		link = helpers.EnsureScheme(strings.TrimSpace(link))
		if !helpers.IntermediaryHostRegex.MatchString(helpers.HostOfURL(link)) {
			return
		}

		// a bare host carries no invite reference
		parsed, err := url.Parse(link)
		if err != nil || parsed.Path == "" || parsed.Path == "/" {
			return
		}

		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	}

	for _, found := range xurls.Strict.FindAllString(string(body), -1) {
		add(found)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
			add(selection.AttrOr("href", ""))
		})
	}

	return links
}
