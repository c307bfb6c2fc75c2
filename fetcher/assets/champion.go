package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"

	"loltools/fetcher/requests"
	"loltools/pkg/models/champion"
)

// ErrChampionNotFound is returned when the id or name is not on the catalog.
var ErrChampionNotFound = errors.New("champion not found")

// Store is a key value store the catalog is backed by, e.g. redis or the cache table.
type Store interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
}

// Logger receives the store failures, which never fail a lookup.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ChampionCatalogDeps is the dependency list for the catalog.
// Only the client is required.
type ChampionCatalogDeps struct {
	Client   *requests.Client
	BaseURL  string
	Language string
	Stores   []Store
	Logger   Logger
}

// ChampionCatalog maps the numeric champion ids to the display names.
// A single version is kept in memory, asking for another version replaces it.
type ChampionCatalog struct {
	client   *requests.Client
	baseURL  string
	language string
	stores   []Store
	logger   Logger

	mu        sync.Mutex
	latest    string
	version   string
	champions []champion.Champion
	names     map[string]string
}

// NewChampionCatalog creates a empty catalog.
func NewChampionCatalog(deps *ChampionCatalogDeps) *ChampionCatalog {
	catalog := &ChampionCatalog{
		client:   deps.Client,
		baseURL:  deps.BaseURL,
		language: deps.Language,
		stores:   deps.Stores,
		logger:   deps.Logger,
	}

	if catalog.baseURL == "" {
		catalog.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(catalog.baseURL, "/") {
		catalog.baseURL += "/"
	}
	if catalog.language == "" {
		catalog.language = DefaultLanguage
	}
	if catalog.logger == nil {
		catalog.logger = discardLogger{}
	}

	return catalog
}

// Resolve returns the id to name map of the version, empty means the latest.
func (c *ChampionCatalog) Resolve(ctx context.Context, version string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(ctx, version, false); err != nil {
		return nil, err
	}
	return maps.Clone(c.names), nil
}

// Champions returns every champion of the version, sorted by name.
func (c *ChampionCatalog) Champions(ctx context.Context, version string) ([]champion.Champion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(ctx, version, false); err != nil {
		return nil, err
	}
	return slices.Clone(c.champions), nil
}

// Name returns the display name of a single champion id.
func (c *ChampionCatalog) Name(ctx context.Context, version string, id string) (string, error) {
	names, err := c.Resolve(ctx, version)
	if err != nil {
		return "", err
	}

	name, exists := names[id]
	if !exists {
		return "", fmt.Errorf("%w: id %s", ErrChampionNotFound, id)
	}
	return name, nil
}

// Lookup finds a champion by its numeric id, its name or its asset key, ignoring case.
func (c *ChampionCatalog) Lookup(ctx context.Context, version string, query string) (champion.Champion, error) {
	champions, err := c.Champions(ctx, version)
	if err != nil {
		return champion.Champion{}, err
	}

	query = strings.TrimSpace(query)
	for _, champ := range champions {
		if champ.ID == query || strings.EqualFold(champ.Name, query) || strings.EqualFold(champ.NameKey, query) {
			return champ, nil
		}
	}
	return champion.Champion{}, fmt.Errorf("%w: %s", ErrChampionNotFound, query)
}

// Revalidate fetches the version from the data dragon, ignoring what is stored, and writes it back.
func (c *ChampionCatalog) Revalidate(ctx context.Context, version string) ([]champion.Champion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(ctx, version, true); err != nil {
		return nil, err
	}
	return slices.Clone(c.champions), nil
}

// Version returns the version currently in memory, empty when nothing was loaded.
func (c *ChampionCatalog) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Load the version into memory, the lock must be held.
func (c *ChampionCatalog) load(ctx context.Context, version string, force bool) error {
	// The latest version is resolved once, only a revalidation asks again.
	if version == "" {
		if force || c.latest == "" {
			latest, err := c.LatestVersion(ctx)
			if err != nil {
				return fmt.Errorf("couldn't get the latest version: %w", err)
			}
			c.latest = latest
		}
		version = c.latest
	}

	// Already in memory.
	if !force && c.version == version && c.champions != nil {
		return nil
	}

	key := championPrefix + c.language + ":" + version

	var champions []champion.Champion
	found := false
	if !force {
		found = c.readStores(ctx, key, &champions)
	}

	if !found {
		fetched, err := c.fetchChampions(ctx, version)
		if err != nil {
			return err
		}
		champions = fetched
		c.writeStores(ctx, key, champions)
	}

	c.version = version
	c.champions = champions
	c.names = championNames(champions)
	return nil
}

// Get the champion list of the version from the ddragon.
func (c *ChampionCatalog) fetchChampions(ctx context.Context, version string) ([]champion.Champion, error) {
	// Format the champion api url.
	url := fmt.Sprintf("%scdn/%s/data/%s/champion.json", c.baseURL, version, c.language)
	resp, err := c.client.Request(ctx, "GET", url)
	if err != nil {
		return nil, fmt.Errorf("couldn't get the champions: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d for %s", resp.StatusCode, url)
	}

	// Read the champion json.
	var championsData fullChampion
	if err := json.NewDecoder(resp.Body).Decode(&championsData); err != nil {
		return nil, fmt.Errorf("couldn't convert the body to json: %w", err)
	}

	champions := make([]champion.Champion, 0, len(championsData.Data))
	for _, data := range championsData.Data {
		champions = append(champions, toChampion(data))
	}

	slices.SortFunc(champions, func(a, b champion.Champion) int {
		return strings.Compare(a.Name, b.Name)
	})

	return champions, nil
}

// Read the key from the first store that has it, filling the stores before it.
// Store failures are logged and treated as misses.
func (c *ChampionCatalog) readStores(ctx context.Context, key string, target any) bool {
	for i, store := range c.stores {
		value, found, err := store.GetKey(ctx, key)
		if err != nil {
			c.logger.Errorf("Couldn't read %s from the store %d: %v", key, i, err)
			continue
		}
		if !found {
			continue
		}

		if err := json.Unmarshal([]byte(value), target); err != nil {
			c.logger.Errorf("Invalid value for %s on the store %d: %v", key, i, err)
			continue
		}

		// Write back to the faster stores that missed it.
		for _, missed := range c.stores[:i] {
			if err := missed.SetKey(ctx, key, value); err != nil {
				c.logger.Errorf("Couldn't write back %s: %v", key, err)
			}
		}
		return true
	}
	return false
}

// Write the value to every store.
func (c *ChampionCatalog) writeStores(ctx context.Context, key string, value any) {
	if len(c.stores) == 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Errorf("Couldn't convert %s to json: %v", key, err)
		return
	}

	for i, store := range c.stores {
		if err := store.SetKey(ctx, key, string(data)); err != nil {
			c.logger.Errorf("Couldn't write %s to the store %d: %v", key, i, err)
		}
	}
}

type discardLogger struct{}

func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Errorf(string, ...interface{}) {}
