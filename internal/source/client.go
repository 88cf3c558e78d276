// Package source fetches the raw sheets as CSV from the Google gviz export
// and caches each fetch for a short TTL. This is the only I/O in the
// service; the engine itself never fetches anything.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"ventas-service/internal/config"
)

// CSVURL builds the gviz CSV export URL for one sheet tab.
func CSVURL(sheetID, tab string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s", sheetID, url.QueryEscape(tab))
}

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

// Client fetches sheet CSV exports with a per-sheet TTL cache. Safe for
// concurrent use.
type Client struct {
	http *http.Client
	ttl  time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a fetch client. ttl <= 0 disables caching.
func NewClient(ttl time.Duration) *Client {
	return &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

// Fetch returns the CSV bytes for one sheet, from cache when fresh.
func (c *Client) Fetch(ctx context.Context, ref config.SheetRef) ([]byte, error) {
	if ref.SheetID == "" {
		return nil, fmt.Errorf("hoja sin sheet_id configurado")
	}
	key := ref.SheetID + "|" + ref.Tab

	c.mu.Lock()
	entry, ok := c.cache[key]
	c.mu.Unlock()
	if ok && c.ttl > 0 && time.Since(entry.fetchedAt) < c.ttl {
		return entry.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CSVURL(ref.SheetID, ref.Tab), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error al descargar la hoja %s: %w", ref.SheetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("descarga de la hoja %s devolvió %d", ref.SheetID, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{data: data, fetchedAt: time.Now()}
	c.mu.Unlock()
	return data, nil
}
