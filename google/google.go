package google

import (
	"net/http"
	"net/url"
	"strconv"

	"strings"

	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Seklfreak/discord-invite-finder/helpers"
	"github.com/Seklfreak/discord-invite-finder/metrics"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
)

const (
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:71.0) Gecko/20100101 Firefox/71.0"
	BaseUrl   = "https://www.google.com"
	SearchUrl = BaseUrl + "/search"

	// ResultsPerPage is fixed by google
	ResultsPerPage = 10

	// DefaultTimeWindow limits results to the last hour, qdr syntax
	DefaultTimeWindow = "h"
)

// Searcher queries google for pages referencing the invite pattern within a
// trailing time window
type Searcher struct {
	TimeWindow string
}

func NewSearcher(timeWindow string) *Searcher {
	if timeWindow == "" {
		timeWindow = DefaultTimeWindow
	}
	return &Searcher{TimeWindow: timeWindow}
}

// Search returns the result links of result page $page, ordered as google
// returns them. An empty result means the result set is exhausted, the
// caller decides how many pages to request.
func (s *Searcher) Search(page int) (links []string, err error) {
	return search(page, s.TimeWindow)
}

func getSearchQueries(page int, timeWindow string) (query string) {
	parsedUrl, err := url.Parse(BaseUrl)
	if err != nil {
		panic(err)
	}
	queryBuilder := parsedUrl.Query()
	queryBuilder.Add("q", "\"discord.gg\"")
	queryBuilder.Add("tbs", "qdr:"+timeWindow)
	queryBuilder.Add("filter", "0")
	queryBuilder.Add("hl", "en")
	queryBuilder.Add("start", strconv.Itoa(page*ResultsPerPage))

	return queryBuilder.Encode()
}

func search(page int, timeWindow string) (links []string, err error) {
	// google throttles with 503s, back off and retry instead of failing
	client := pester.New()
	client.Concurrency = 1
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff
	client.Timeout = 10 * time.Second

	request, err := http.NewRequest("GET", SearchUrl+"?"+getSearchQueries(page, timeWindow), nil)
	if err != nil {
		return links, err
	}

	request.Header.Set("User-Agent", UserAgent)

	metrics.SearchRequests.Add(1)

	response, err := client.Do(request)
	if err != nil {
		return links, err
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return links, errors.Errorf("unexpected status code: %d", response.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return links, err
	}

	return resultLinks(doc), nil
}

// resultLinks pulls the outbound result urls out of a result document
func resultLinks(doc *goquery.Document) (links []string) {
	seen := make(map[string]bool)

	add := func(link string) {
		link = unwrapResultLink(link)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	}

	doc.Find("div[class=rc]").Each(func(_ int, selection *goquery.Selection) {
		add(selection.Find("h3[class=r] a").First().AttrOr("href", ""))
	})

	// the no-javascript markup wraps every result into a /url? redirect
	if len(links) == 0 {
		doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
			href := selection.AttrOr("href", "")
			if strings.HasPrefix(href, "/url?") {
				add(href)
			}
		})
	}

	return links
}

// unwrapResultLink normalizes a result href to its target url and drops
// google internal links
func unwrapResultLink(link string) string {
	if strings.HasPrefix(link, "/url?") {
		parsed, err := url.ParseQuery(strings.TrimPrefix(link, "/url?"))
		if err != nil {
			return ""
		}
		link = parsed.Get("q")
		if link == "" {
			link = parsed.Get("url")
		}
	}

	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return ""
	}

	host := helpers.HostOfURL(link)
	if host == "google.com" || strings.HasSuffix(host, ".google.com") ||
		strings.HasSuffix(host, "googleusercontent.com") {
		return ""
	}

	return link
}
