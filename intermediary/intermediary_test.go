package intermediary

import (
	"fmt"
	"testing"

	"time"

	"github.com/Seklfreak/discord-invite-finder/models"
)

// fakeFetcher serves pages from memory and counts fetches
type fakeFetcher struct {
	pages  map[string]string
	errors map[string]error
	calls  []string
}

func (f *fakeFetcher) fetch(pageUrl string, timeout time.Duration) (*models.Page, error) {
	f.calls = append(f.calls, pageUrl)

	if err, ok := f.errors[pageUrl]; ok {
		return nil, err
	}

	body, ok := f.pages[pageUrl]
	if !ok {
		return nil, &models.ResolveError{Kind: models.ErrorKindHTTP, URL: pageUrl, StatusCode: 404}
	}

	return &models.Page{
		URL:          pageUrl,
		EffectiveURL: pageUrl,
		StatusCode:   200,
		Body:         []byte(body),
	}, nil
}

func newTestResolver(fetcher *fakeFetcher) *Resolver {
	resolver := NewResolver()
	resolver.Fetch = fetcher.fetch
	return resolver
}

func TestResolveTerminalPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `<html><body>join now: discord.gg/Abc123xyz and discord.gg/Abc123xyz</body></html>`,
	}}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}

	if len(result.InviteCodes) != 1 || result.InviteCodes[0] != "Abc123xyz" {
		t.Fatalf("intermediary.Resolve() returned %v, expected [Abc123xyz]", result.InviteCodes)
	}
	if len(result.RedirectChain) != 1 {
		t.Fatalf("intermediary.Resolve() fetched %d pages for a terminal page", len(result.RedirectChain))
	}
}

func TestResolveFollowsIntermediary(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `<html><body>server listing: <a href="https://dsc.gg/coolserver">join</a></body></html>`,
		"https://dsc.gg/coolserver": `<html><body><a href="https://discord.gg/UNWEj54">you are being redirected</a></body></html>`,
	}}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}

	if len(result.InviteCodes) != 1 || result.InviteCodes[0] != "UNWEj54" {
		t.Fatalf("intermediary.Resolve() returned %v, expected [UNWEj54]", result.InviteCodes)
	}
	if len(result.RedirectChain) != 2 ||
		result.RedirectChain[0] != "https://example.com/page" ||
		result.RedirectChain[1] != "https://dsc.gg/coolserver" {
		t.Fatalf("intermediary.Resolve() recorded redirect chain %v", result.RedirectChain)
	}
}

func TestResolveTieBreak(t *testing.T) {
	// direct codes win, the intermediary link must not be fetched
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `discord.gg/UNWEj54 but also check https://dsc.gg/coolserver`,
	}}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}

	if len(result.InviteCodes) != 1 || result.InviteCodes[0] != "UNWEj54" {
		t.Fatalf("intermediary.Resolve() returned %v, expected [UNWEj54]", result.InviteCodes)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("intermediary.Resolve() fetched %d pages, the intermediary link was chased", len(fetcher.calls))
	}
}

func TestResolveAmbiguousIntermediaries(t *testing.T) {
	// more than one candidate link is ambiguous and not chased
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `https://dsc.gg/one and https://invite.gg/two`,
	}}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}

	if len(result.InviteCodes) != 0 {
		t.Fatalf("intermediary.Resolve() returned %v, expected no codes", result.InviteCodes)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("intermediary.Resolve() fetched %d pages for an ambiguous page", len(fetcher.calls))
	}
}

func TestResolveAbsenceIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `<html><body>nothing interesting</body></html>`,
	}}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error on clean absence: %s", err.Error())
	}
	if len(result.InviteCodes) != 0 || result.Err != nil {
		t.Fatalf("intermediary.Resolve() returned %v, expected an empty result", result.InviteCodes)
	}
}

func TestResolveHTTPErrorOnInitialURL(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{},
		errors: map[string]error{
			"https://example.com/gone": &models.ResolveError{Kind: models.ErrorKindHTTP, URL: "https://example.com/gone", StatusCode: 404},
		},
	}

	result, err := newTestResolver(fetcher).Resolve("https://example.com/gone")
	if err == nil {
		t.Fatal("intermediary.Resolve() returned no error for a 404")
	}

	resolveErr, ok := err.(*models.ResolveError)
	if !ok {
		t.Fatalf("intermediary.Resolve() returned %T, expected *models.ResolveError", err)
	}
	if resolveErr.Kind != models.ErrorKindHTTP || resolveErr.StatusCode != 404 {
		t.Fatalf("intermediary.Resolve() returned kind %s status %d", resolveErr.Kind, resolveErr.StatusCode)
	}
	if resolveErr.URL != "https://example.com/gone" {
		t.Fatalf("intermediary.Resolve() tagged the error with %q", resolveErr.URL)
	}
	if result.Err != resolveErr {
		t.Fatal("intermediary.Resolve() did not attach the error to the result")
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("intermediary.Resolve() attempted recursion after a failed fetch, %d fetches", len(fetcher.calls))
	}
}

func TestResolveDepthBound(t *testing.T) {
	// 6 hop chain with the default bound of 5
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `https://dsc.gg/hop1`,
	}}
	for i := 1; i <= 5; i++ {
		fetcher.pages[fmt.Sprintf("https://dsc.gg/hop%d", i)] = fmt.Sprintf("https://dsc.gg/hop%d", i+1)
	}
	fetcher.pages["https://dsc.gg/hop6"] = "discord.gg/UNWEj54"

	_, err := newTestResolver(fetcher).Resolve("https://example.com/page")
	if err == nil {
		t.Fatal("intermediary.Resolve() returned no error for a 6 hop chain")
	}

	resolveErr, ok := err.(*models.ResolveError)
	if !ok || resolveErr.Kind != models.ErrorKindTooManyRedirects {
		t.Fatalf("intermediary.Resolve() returned %v, expected too many redirects", err)
	}
	if len(fetcher.calls) > DefaultMaxDepth {
		t.Fatalf("intermediary.Resolve() fetched %d pages past the depth bound", len(fetcher.calls))
	}
}

func TestResolveCyclicChain(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://dsc.gg/a": `https://dsc.gg/b`,
		"https://dsc.gg/b": `https://dsc.gg/a`,
	}}

	_, err := newTestResolver(fetcher).Resolve("https://dsc.gg/a")
	if err == nil {
		t.Fatal("intermediary.Resolve() returned no error for a cyclic chain")
	}

	resolveErr, ok := err.(*models.ResolveError)
	if !ok || resolveErr.Kind != models.ErrorKindTooManyRedirects {
		t.Fatalf("intermediary.Resolve() returned %v, expected too many redirects", err)
	}
}

func TestResolveDeadline(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `https://dsc.gg/slow`,
		"https://dsc.gg/slow":      `discord.gg/UNWEj54`,
	}}

	resolver := newTestResolver(fetcher)
	resolver.Deadline = time.Millisecond
	slowFetch := resolver.Fetch
	resolver.Fetch = func(pageUrl string, timeout time.Duration) (*models.Page, error) {
		time.Sleep(5 * time.Millisecond)
		return slowFetch(pageUrl, timeout)
	}

	_, err := resolver.Resolve("https://example.com/page")
	if err == nil {
		t.Fatal("intermediary.Resolve() returned no error past its deadline")
	}

	resolveErr, ok := err.(*models.ResolveError)
	if !ok || resolveErr.Kind != models.ErrorKindTimeout {
		t.Fatalf("intermediary.Resolve() returned %v, expected a timeout", err)
	}
}

func TestResolveIdempotence(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://example.com/page": `discord.gg/UNWEj54 discord.gg/Yyakf3`,
	}}
	resolver := newTestResolver(fetcher)

	first, err := resolver.Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}
	second, err := resolver.Resolve("https://example.com/page")
	if err != nil {
		t.Fatalf("intermediary.Resolve() returned an error: %s", err.Error())
	}

	if len(first.InviteCodes) != 2 || len(second.InviteCodes) != 2 {
		t.Fatalf("intermediary.Resolve() is not idempotent: %v vs %v", first.InviteCodes, second.InviteCodes)
	}
	for i := range first.InviteCodes {
		if first.InviteCodes[i] != second.InviteCodes[i] {
			t.Fatalf("intermediary.Resolve() is not idempotent: %v vs %v", first.InviteCodes, second.InviteCodes)
		}
	}
}
