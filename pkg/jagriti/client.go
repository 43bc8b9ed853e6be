package jagriti

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/lexisearch/jagriti-case-client/pkg/cache"
)

// Upstream paths of the daily-order search flow.
const (
	searchPagePath    = "/daily_order_search/"
	commissionsPath   = "/get_commissions/"
	searchResultsPath = "/daily_order_search/results/"
)

// Fixed form constraints: the upstream endpoint multiplexes several
// commission tiers and order types through one form, and this client only
// serves district-level daily orders filtered by filing date.
const (
	commissionTypeDistrict = "district"
	orderTypeDailyOrders   = "daily_orders"
	dateFilterFilingDate   = "filing_date"
)

// DefaultLookupTTL is the cache lifetime for states and commissions when the
// configuration leaves it unset.
const DefaultLookupTTL = 24 * time.Hour

// Transport is the HTTP capability the client depends on. Satisfied by
// pkg/client.Client.
type Transport interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
}

// Config holds the domain client configuration.
type Config struct {
	// BaseURL is the root of the upstream site.
	BaseURL string

	// CacheTTLStates and CacheTTLCommissions bound the lookup caches.
	// Zero means DefaultLookupTTL.
	CacheTTLStates      time.Duration
	CacheTTLCommissions time.Duration
}

// Client answers case-search requests against the upstream site.
type Client struct {
	transport Transport
	store     cache.Store
	config    Config
	group     singleflight.Group
	logger    zerolog.Logger
}

// New creates a domain client. The cache store shields the transport from
// repeated lookup calls; concurrent misses for the same key are collapsed
// into one upstream fetch.
func New(cfg Config, transport Transport, store cache.Store, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}

	if cfg.CacheTTLStates <= 0 {
		cfg.CacheTTLStates = DefaultLookupTTL
	}
	if cfg.CacheTTLCommissions <= 0 {
		cfg.CacheTTLCommissions = DefaultLookupTTL
	}

	return &Client{
		transport: transport,
		store:     store,
		config:    cfg,
		logger:    logger,
	}, nil
}

// FetchStates returns the list of states, cache-backed.
func (c *Client) FetchStates(ctx context.Context) ([]StateInfo, error) {
	if data, err := c.store.Get(ctx, cache.StatesKey); err == nil {
		var states []StateInfo
		if err := json.Unmarshal(data, &states); err == nil {
			c.logger.Debug().Int("count", len(states)).Msg("Returning cached states")
			return states, nil
		}
		// Corrupt entry: drop it and refetch.
		_, _ = c.store.Delete(ctx, cache.StatesKey)
	}

	v, err, _ := c.group.Do(cache.StatesKey, func() (interface{}, error) {
		body, err := c.transport.Get(ctx, c.config.BaseURL+searchPagePath)
		if err != nil {
			return nil, err
		}

		states, err := parseStates(body)
		if err != nil {
			return nil, err
		}

		c.cachePut(ctx, cache.StatesKey, states, c.config.CacheTTLStates)
		c.logger.Info().Int("count", len(states)).Msg("Fetched and cached states")
		return states, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch states: %w", err)
	}
	return v.([]StateInfo), nil
}

// FetchCommissions returns the commissions of one state, cache-backed.
func (c *Client) FetchCommissions(ctx context.Context, stateID string) ([]CommissionInfo, error) {
	key := cache.CommissionsKey(stateID)

	if data, err := c.store.Get(ctx, key); err == nil {
		var commissions []CommissionInfo
		if err := json.Unmarshal(data, &commissions); err == nil {
			c.logger.Debug().Str("state_id", stateID).Int("count", len(commissions)).Msg("Returning cached commissions")
			return commissions, nil
		}
		_, _ = c.store.Delete(ctx, key)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		form := url.Values{"state_id": {stateID}}
		body, err := c.transport.PostForm(ctx, c.config.BaseURL+commissionsPath, form)
		if err != nil {
			return nil, err
		}

		commissions, err := parseCommissions(body, stateID)
		if err != nil {
			return nil, err
		}

		c.cachePut(ctx, key, commissions, c.config.CacheTTLCommissions)
		c.logger.Info().Str("state_id", stateID).Int("count", len(commissions)).Msg("Fetched and cached commissions")
		return commissions, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch commissions for state %s: %w", stateID, err)
	}
	return v.([]CommissionInfo), nil
}

// ResolveStateAndCommissionIDs maps free-text state and commission names to
// the site's internal identifiers. Matching is exact-then-substring; a miss
// returns a NotFoundError listing all known names.
func (c *Client) ResolveStateAndCommissionIDs(ctx context.Context, stateText, commissionText string) (string, string, error) {
	states, err := c.FetchStates(ctx)
	if err != nil {
		return "", "", err
	}

	stateNames := make([]string, len(states))
	for i, s := range states {
		stateNames[i] = s.StateText
	}

	idx, ok := matchText(stateText, stateNames)
	if !ok {
		return "", "", &NotFoundError{Kind: "state", Input: stateText, Candidates: stateNames}
	}
	stateID := states[idx].StateID

	commissions, err := c.FetchCommissions(ctx, stateID)
	if err != nil {
		return "", "", err
	}

	commissionNames := make([]string, len(commissions))
	for i, cm := range commissions {
		commissionNames[i] = cm.CommissionText
	}

	idx, ok = matchText(commissionText, commissionNames)
	if !ok {
		return "", "", &NotFoundError{Kind: "commission", Input: commissionText, Candidates: commissionNames}
	}

	c.logger.Debug().
		Str("state_id", stateID).
		Str("commission_id", commissions[idx].CommissionID).
		Msg("Resolved state and commission")

	return stateID, commissions[idx].CommissionID, nil
}

// SearchCases runs one case search and returns the normalized records along
// with the total result count. When the results page omits an explicit total,
// the count is estimated from the page size: a full page implies at least one
// more record exists.
func (c *Client) SearchCases(ctx context.Context, params SearchParams) ([]CaseRecord, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 20
	}

	field, ok := searchTypeFields[params.SearchType]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownSearchType, params.SearchType)
	}

	stateID, commissionID, err := c.ResolveStateAndCommissionIDs(ctx, params.StateText, params.CommissionText)
	if err != nil {
		return nil, 0, err
	}

	form := url.Values{
		"state_id":        {stateID},
		"commission_id":   {commissionID},
		"commission_type": {commissionTypeDistrict},
		"order_type":      {orderTypeDailyOrders},
		"date_filter_by":  {dateFilterFilingDate},
		"search_by":       {field},
		"search_value":    {params.SearchValue},
		"page":            {strconv.Itoa(params.Page)},
		"per_page":        {strconv.Itoa(params.PerPage)},
	}
	if params.DateFrom != "" {
		form.Set("date_from", params.DateFrom)
	}
	if params.DateTo != "" {
		form.Set("date_to", params.DateTo)
	}

	body, err := c.transport.PostForm(ctx, c.config.BaseURL+searchResultsPath, form)
	if err != nil {
		return nil, 0, err
	}

	records, total, totalFound, err := parseSearchResults(body, c.config.BaseURL, c.logger)
	if err != nil {
		return nil, 0, err
	}

	if !totalFound {
		if len(records) == params.PerPage {
			total = params.PerPage*params.Page + 1
		} else {
			total = len(records) + params.PerPage*(params.Page-1)
		}
	}

	c.logger.Info().
		Str("search_type", params.SearchType).
		Str("state_id", stateID).
		Str("commission_id", commissionID).
		Int("records", len(records)).
		Int("total", total).
		Msg("Search completed")

	return records, total, nil
}

// cachePut marshals value and stores it; cache failures only degrade
// performance and are logged, never surfaced.
func (c *Client) cachePut(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache value")
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}
