package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// LatestVersion gets the newest game data version from the data dragon.
// The latest versions are written to the stores, and read from them when the data dragon can't be reached.
func (c *ChampionCatalog) LatestVersion(ctx context.Context) (string, error) {
	versions, err := c.fetchVersions(ctx)
	if err == nil {
		c.writeStores(ctx, versionKey, versions[:min(storedVersions, len(versions))])
		return versions[0], nil
	}

	// The data dragon failed, try the versions that were stored before.
	var stored []string
	if c.readStores(ctx, versionKey, &stored) && len(stored) > 0 {
		c.logger.Infof("Couldn't get the versions (%v), using the stored %s", err, stored[0])
		return stored[0], nil
	}

	return "", err
}

// Get all the versions from the ddragon, newest first.
func (c *ChampionCatalog) fetchVersions(ctx context.Context) ([]string, error) {
	url := c.baseURL + "api/versions.json"
	resp, err := c.client.Request(ctx, "GET", url)
	if err != nil {
		return nil, fmt.Errorf("couldn't get the current version: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d for %s", resp.StatusCode, url)
	}

	// Read the version json/array into the version.
	var versions []string
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return nil, fmt.Errorf("couldn't convert the body to json: %w", err)
	}

	if len(versions) == 0 {
		return nil, errors.New("no versions available")
	}

	return versions, nil
}
