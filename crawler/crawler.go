package crawler

import (
	"sync"

	"github.com/Seklfreak/discord-invite-finder/helpers"
	"github.com/Seklfreak/discord-invite-finder/metrics"
	"github.com/Seklfreak/discord-invite-finder/models"
	"github.com/pkg/errors"
)

// Discovery supplies candidate urls for a result page index
type Discovery interface {
	Search(page int) ([]string, error)
}

// Resolver turns one candidate url into its terminal invite codes
type Resolver interface {
	Resolve(pageUrl string) (*models.ResolutionResult, error)
}

const DefaultConcurrency = 4

// Crawler fans candidate urls out over a bounded set of resolver workers.
// Resolutions share no state, results are collected in completion order.
type Crawler struct {
	discovery   Discovery
	resolver    Resolver
	concurrency int
}

func New(discovery Discovery, resolver Resolver, concurrency int) *Crawler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Crawler{
		discovery:   discovery,
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// RunPage resolves every candidate url of discovery page $page. Failed
// resolutions are carried in their result, only a discovery failure is fatal.
func (c *Crawler) RunPage(page int) ([]*models.ResolutionResult, error) {
	links, err := c.discovery.Search(page)
	if err != nil {
		return nil, errors.Wrap(err, "discovery failed")
	}

	return c.ResolveAll(links), nil
}

// ResolveAll resolves $links concurrently
func (c *Crawler) ResolveAll(links []string) []*models.ResolutionResult {
	var wg sync.WaitGroup
	mux := new(sync.Mutex)
	semaphore := make(chan struct{}, c.concurrency)

	results := make([]*models.ResolutionResult, 0, len(links))

	for _, link := range links {
		wg.Add(1)

		go func(link string) {
			defer wg.Done()
			defer helpers.Recover()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			metrics.ResolutionsStarted.Add(1)

			result, err := c.resolver.Resolve(link)
			if err != nil {
				metrics.ResolveErrors.Add(1)
			} else {
				metrics.InvitesFound.Add(int64(len(result.InviteCodes)))
			}

			mux.Lock()
			results = append(results, result)
			mux.Unlock()
		}(link)
	}

	wg.Wait()

	return results
}
