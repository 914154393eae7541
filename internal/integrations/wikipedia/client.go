package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"smart-chatbot/internal/domain"
)

const (
	defaultLanguage  = "en"
	defaultUserAgent = "smart-chatbot/1.0"
	settingsParam    = "/wikipedia"
)

// ParamLookup is the optional parameter source for provider settings.
// A missing parameter is reported as ok=false, not as an error.
type ParamLookup interface {
	LookupParameter(ctx context.Context, name string) (value string, ok bool, err error)
}

// settingsPayload is the expected JSON shape stored in SSM.
type settingsPayload struct {
	UserAgent string `json:"user_agent"`
	Language  string `json:"language"`
}

type settings struct {
	userAgent string
	language  string
}

// Client queries the MediaWiki Action API of a Wikipedia edition.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	params      ParamLookup
	paramPrefix string
	defaults    settings

	mu       sync.RWMutex
	loaded   bool
	resolved settings
}

type Option func(*Client)

// WithBaseURL pins the API endpoint. A pinned endpoint wins over any
// configured language.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLanguage(language string) Option {
	return func(c *Client) {
		if l := strings.TrimSpace(language); l != "" {
			c.defaults.language = l
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.defaults.userAgent = ua
		}
	}
}

// WithParamStore lets "{prefix}/wikipedia" in the parameter store override
// the user agent and language. The parameter is read on first use.
func WithParamStore(params ParamLookup, prefix string) Option {
	return func(c *Client) {
		c.params = params
		c.paramPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// NewClient creates a Client for the English Wikipedia unless configured otherwise.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		defaults: settings{
			userAgent: defaultUserAgent,
			language:  defaultLanguage,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.params != nil && c.paramPrefix == "" {
		return nil, errors.New("wikipedia: parameter prefix must not be empty")
	}
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("wikipedia: invalid base url %q", c.baseURL)
		}
	}
	return c, nil
}

func apiURL(baseURL, language string) string {
	if base := strings.TrimSpace(baseURL); base != "" {
		return base
	}
	if language == "" {
		language = defaultLanguage
	}
	return "https://" + language + ".wikipedia.org/w/api.php"
}

// resolveSettings loads parameter-store overrides once. A failed load is not
// cached so the next lookup retries.
func (c *Client) resolveSettings(ctx context.Context) (settings, error) {
	if c.params == nil {
		return c.defaults, nil
	}

	c.mu.RLock()
	if c.loaded {
		s := c.resolved
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.resolved, nil
	}

	s, err := fetchSettingsFromParamStore(ctx, c.params, c.paramPrefix+settingsParam, c.defaults)
	if err != nil {
		return settings{}, err
	}
	c.resolved = s
	c.loaded = true
	return s, nil
}

func fetchSettingsFromParamStore(ctx context.Context, params ParamLookup, name string, defaults settings) (settings, error) {
	raw, ok, err := params.LookupParameter(ctx, name)
	if err != nil {
		return settings{}, fmt.Errorf("wikipedia: fetch settings from paramstore: %w", err)
	}
	if !ok {
		return defaults, nil
	}
	var p settingsPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return settings{}, fmt.Errorf("wikipedia: unmarshal paramstore settings as JSON: %w", err)
	}
	s := defaults
	if ua := strings.TrimSpace(p.UserAgent); ua != "" {
		s.userAgent = ua
	}
	if l := strings.TrimSpace(p.Language); l != "" {
		s.language = l
	}
	return s, nil
}

// Summary returns the plain-text lead of the article best matching
// req.Query, limited to req.Sentences sentences when positive.
func (c *Client) Summary(ctx context.Context, req domain.LookupRequest) (string, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", errors.New("wikipedia: query must not be empty")
	}

	s, err := c.resolveSettings(ctx)
	if err != nil {
		return "", err
	}

	title := query
	if req.AutoSuggest {
		title, err = c.suggest(ctx, s, query)
		if err != nil {
			return "", err
		}
	}

	title, err = c.resolvePage(ctx, s, title, req.Redirect)
	if err != nil {
		return "", err
	}
	return c.extract(ctx, s, title, req.Sentences)
}

type searchResponse struct {
	Query struct {
		SearchInfo struct {
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// suggest picks the search suggestion, or the top hit when there is none.
func (c *Client) suggest(ctx context.Context, s settings, query string) (string, error) {
	var payload searchResponse
	err := c.get(ctx, s, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"srprop":   {""},
		"srinfo":   {"suggestion"},
	}, &payload)
	if err != nil {
		return "", fmt.Errorf("wikipedia: search: %w", err)
	}
	if sug := payload.Query.SearchInfo.Suggestion; sug != "" {
		return sug, nil
	}
	if len(payload.Query.Search) == 0 {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, query)
	}
	return payload.Query.Search[0].Title, nil
}

type pageInfoResponse struct {
	Query struct {
		Redirects []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"redirects"`
		Pages []struct {
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Invalid   bool              `json:"invalid"`
			PageProps map[string]string `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

// resolvePage returns the canonical title for title, following redirects
// when allowed and rejecting missing and disambiguation pages.
func (c *Client) resolvePage(ctx context.Context, s settings, title string, redirect bool) (string, error) {
	var payload pageInfoResponse
	err := c.get(ctx, s, url.Values{
		"action":    {"query"},
		"prop":      {"info|pageprops"},
		"inprop":    {"url"},
		"ppprop":    {"disambiguation"},
		"redirects": {""},
		"titles":    {title},
	}, &payload)
	if err != nil {
		return "", fmt.Errorf("wikipedia: page info: %w", err)
	}
	if len(payload.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}
	page := payload.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}
	if len(payload.Query.Redirects) > 0 && !redirect {
		return "", &RedirectError{Title: title}
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		options, err := c.disambiguationOptions(ctx, s, page.Title)
		if err != nil {
			return "", err
		}
		return "", &DisambiguationError{Title: page.Title, Options: options}
	}
	return page.Title, nil
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
}

func (c *Client) disambiguationOptions(ctx context.Context, s settings, title string) ([]string, error) {
	var payload parseResponse
	err := c.get(ctx, s, url.Values{
		"action": {"parse"},
		"page":   {title},
		"prop":   {"text"},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("wikipedia: disambiguation page: %w", err)
	}
	options, err := parseDisambiguation(payload.Parse.Text)
	if err != nil {
		return nil, fmt.Errorf("wikipedia: disambiguation page: %w", err)
	}
	return options, nil
}

type extractResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *Client) extract(ctx context.Context, s settings, title string, sentences int) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {""},
		"titles":      {title},
	}
	if sentences > 0 {
		params.Set("exsentences", strconv.Itoa(sentences))
	} else {
		params.Set("exintro", "")
	}

	var payload extractResponse
	if err := c.get(ctx, s, params, &payload); err != nil {
		return "", fmt.Errorf("wikipedia: extract: %w", err)
	}
	if len(payload.Query.Pages) == 0 || payload.Query.Pages[0].Missing {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}
	return payload.Query.Pages[0].Extract, nil
}

type apiEnvelope struct {
	Error *APIError `json:"error"`
}

// get issues one API call and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, s settings, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	endpoint := apiURL(c.baseURL, s.language) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	raw, err := c.doJSONRequest(req, endpoint)
	if err != nil {
		return err
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		return env.Error
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
