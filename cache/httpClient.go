package cache

import (
	"errors"
	"net/http"
	"sync"
)

var (
	httpClient      *http.Client
	httpClientMutex sync.RWMutex
)

func SetHTTPClient(s *http.Client) {
	httpClientMutex.Lock()
	httpClient = s
	httpClientMutex.Unlock()
}

func GetHTTPClient() *http.Client {
	httpClientMutex.RLock()
	defer httpClientMutex.RUnlock()

	if httpClient == nil {
		panic(errors.New("Tried to get the http client before cache#SetHTTPClient() was called"))
	}

	return httpClient
}

func HasHTTPClient() bool {
	httpClientMutex.RLock()
	defer httpClientMutex.RUnlock()

	return httpClient != nil
}
