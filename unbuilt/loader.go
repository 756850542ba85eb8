/*
Package unbuilt loads translation files over HTTP for unbuilt (development)
mode, where no assembled string map exists on disk.

One GET is issued per needed (repository, locale) file, all concurrently. A
failed fetch is logged and counted as processed; it never aborts the other
fetches. Whatever loaded successfully forms the final, possibly incomplete,
string map. The result is an explicit Service value handed to downstream
consumers; it is only written while Load runs and is read-only afterwards.
*/
package unbuilt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/phetsims/simstrings/locale"
	"github.com/phetsims/simstrings/stringmap"
)

// Request identifies one translation file to fetch.
type Request struct {
	Repo      string
	Namespace string
	Locale    string
}

// Service holds the strings loaded for a page: locale to full string key to
// value, plus the metadata side map sourced from fallback-locale entries.
type Service struct {
	strings  map[string]map[string]string
	metadata map[string]map[string]interface{}
}

func newService() *Service {
	return &Service{
		strings:  make(map[string]map[string]string),
		metadata: make(map[string]map[string]interface{}),
	}
}

// Get returns the value for a (locale, full string key) pair.
func (s *Service) Get(loc, fullKey string) (string, bool) {
	value, ok := s.strings[loc][fullKey]
	return value, ok
}

// Strings returns a copy of one locale's key/value map.
func (s *Service) Strings(loc string) map[string]string {
	out := make(map[string]string, len(s.strings[loc]))
	for key, value := range s.strings[loc] {
		out[key] = value
	}
	return out
}

// Locales returns the sorted locales that loaded at least one string.
func (s *Service) Locales() []string {
	locales := make([]string, 0, len(s.strings))
	for loc := range s.strings {
		locales = append(locales, loc)
	}
	sort.Strings(locales)
	return locales
}

// Metadata returns the metadata recorded for a full string key, if any.
func (s *Service) Metadata(fullKey string) (map[string]interface{}, bool) {
	metadata, ok := s.metadata[fullKey]
	return metadata, ok
}

// MarshalJSON serializes the service in the runtime map shape:
// {"strings": {locale: {key: value}}, "stringMetadata": {key: {...}}}.
func (s *Service) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Strings  map[string]map[string]string      `json:"strings"`
		Metadata map[string]map[string]interface{} `json:"stringMetadata"`
	}{s.strings, s.metadata})
}

func (s *Service) add(loc, fullKey, value string) {
	if s.strings[loc] == nil {
		s.strings[loc] = make(map[string]string)
	}
	s.strings[loc][fullKey] = value
}

// Loader fetches translation files from a strings server.
type Loader struct {
	BaseURL string
	Client  *http.Client
	Locales locale.Table
	// Quiet suppresses per-request warnings. Used when loading all locales,
	// where most files are expected to be missing.
	Quiet bool
}

type fetchResult struct {
	request Request
	tree    stringmap.Tree
	err     error
}

// Load fetches every requested file concurrently and returns the populated
// Service once all fetches have completed, successfully or not.
func (l *Loader) Load(ctx context.Context, requests []Request) *Service {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	results := make(chan fetchResult, len(requests))
	var wg sync.WaitGroup

	for _, request := range requests {
		wg.Add(1)
		go func(request Request) {
			defer wg.Done()
			tree, err := l.fetch(ctx, client, request)
			results <- fetchResult{request: request, tree: tree, err: err}
		}(request)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// The service is written only here, on a single goroutine, after each
	// fetch hands its result over.
	service := newService()
	for result := range results {
		if result.err != nil {
			if !l.Quiet {
				fmt.Fprintf(os.Stderr, "Warning: could not load strings for %v/%v: %v\n",
					result.request.Repo, result.request.Locale, result.err)
			}
			continue
		}

		l.merge(service, result.request, result.tree)
	}

	return service
}

func (l *Loader) fetch(ctx context.Context, client *http.Client, request Request) (stringmap.Tree, error) {
	url := fmt.Sprintf("%v/repos/%v/strings/%v", l.BaseURL, request.Repo, request.Locale)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %v", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	tree := make(stringmap.Tree)
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (l *Loader) merge(service *Service, request Request, tree stringmap.Tree) {
	stringmap.FormatTree(tree, l.Locales.IsRTL(request.Locale))

	for partialKey, entry := range stringmap.Flatten(tree) {
		fullKey := request.Namespace + "/" + partialKey
		service.add(request.Locale, fullKey, entry.Value)

		if request.Locale == locale.Fallback && entry.Metadata != nil {
			service.metadata[fullKey] = entry.Metadata
		}
	}
}

// AllLocaleRequests expands one repository into a request per locale in the
// table. Loaders using this are expected to set Quiet, since most locales
// will not have a translation file.
func AllLocaleRequests(repo, namespace string, locales locale.Table) []Request {
	codes := locales.Codes()
	sort.Strings(codes)

	requests := make([]Request, 0, len(codes))
	for _, code := range codes {
		requests = append(requests, Request{Repo: repo, Namespace: namespace, Locale: code})
	}
	return requests
}
