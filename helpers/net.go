package helpers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"time"

	"github.com/Seklfreak/discord-invite-finder/cache"
	"github.com/Seklfreak/discord-invite-finder/models"
	"github.com/Seklfreak/discord-invite-finder/version"
	"github.com/pkg/errors"
)

var DEFAULT_UA = "discord-invite-finder/" + version.FINDER_VERSION + " (https://github.com/Seklfreak/discord-invite-finder)"

// BROWSER_UA is sent when loading candidate pages, most of them serve
// different markup to non-browser agents
const BROWSER_UA = "Mozilla/5.0 (X11; Linux x86_64; rv:71.0) Gecko/20100101 Firefox/71.0"

// TransportRedirectLimit bounds HTTP 3xx redirects followed per fetch
const TransportRedirectLimit = 10

var errTransportRedirectLimit = errors.New("stopped after too many redirects")

// NewHTTPClient allocates the shared http client, pass it to cache#SetHTTPClient()
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= TransportRedirectLimit {
				return errTransportRedirectLimit
			}
			return nil
		},
	}
}

// FetchPage executes a GET request to $pageUrl with the browser user-agent
func FetchPage(pageUrl string, timeout time.Duration) (*models.Page, error) {
	return FetchPageUA(pageUrl, BROWSER_UA, timeout)
}

// FetchPageUA performs a GET request with a custom user-agent and returns the
// page body together with the effective URL after transport redirects.
// Failures are returned as *models.ResolveError tagged with $pageUrl.
func FetchPageUA(pageUrl string, useragent string, timeout time.Duration) (*models.Page, error) {
	client := cache.GetHTTPClient()

	// Prepare request
	request, err := http.NewRequest("GET", pageUrl, nil)
	if err != nil {
		return nil, &models.ResolveError{Kind: models.ErrorKindNetwork, URL: pageUrl, Err: err}
	}

	// Set custom UA
	request.Header.Set("User-Agent", useragent)
	request.Header.Set("Accept", "text/html,text/plain")

	if timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		request = request.WithContext(ctx)
	}

	// Do request
	response, err := client.Do(request)
	if err != nil {
		kind := models.ErrorKindNetwork
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err == errTransportRedirectLimit {
			kind = models.ErrorKindTooManyRedirects
		}
		return nil, &models.ResolveError{Kind: kind, URL: pageUrl, Err: err}
	}
	defer response.Body.Close()

	// Only continue if code was 2xx
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &models.ResolveError{Kind: models.ErrorKindHTTP, URL: pageUrl, StatusCode: response.StatusCode}
	}

	// Read body
	buf := bytes.NewBuffer(nil)
	_, err = io.Copy(buf, response.Body)
	if err != nil {
		return nil, &models.ResolveError{Kind: models.ErrorKindNetwork, URL: pageUrl, Err: err}
	}

	effectiveUrl := pageUrl
	if response.Request != nil && response.Request.URL != nil {
		effectiveUrl = response.Request.URL.String()
	}

	return &models.Page{
		URL:          pageUrl,
		EffectiveURL: effectiveUrl,
		StatusCode:   response.StatusCode,
		Body:         buf.Bytes(),
	}, nil
}
