// Package brands reads the remote brand directory and carries the built-in
// fallback list bundled with the app.
package brands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/outreachmail/outreach/internal/mail"
)

// Brand is one entry of the directory: who to contact and how to show them.
// LogoRes is a handle into the bundled artwork, 0 meaning none.
type Brand struct {
	ID        int
	Name      string
	Email     string
	Instagram string
	Website   string
	Category  string
	LogoURL   string
	LogoRes   int
	Enabled   bool
	Popular   bool
	Favorite  bool
	Place     int
}

// brandJSON mirrors one row of the remote "Live Brands" table.
type brandJSON struct {
	ID        int    `json:"id"`
	Brand     string `json:"brand"`
	Email     string `json:"email"`
	Instagram string `json:"instagram"`
	Website   string `json:"website"`
	Category  string `json:"category"`
	LogoURL   string `json:"logo_url"`
	IsEnabled *bool  `json:"is_enabled"`
	IsPopular bool   `json:"is_popular"`
	Place     int    `json:"place_number"`
}

const (
	liveBrandsTable = "Live%20Brands"
	favouritesTable = "Favourites"
)

// Directory is a read-only client for the remote brand table.
type Directory struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger for the directory.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Directory) {
		d.httpClient = hc
	}
}

// NewDirectory creates a client for the directory at baseURL, authenticated
// with the project's anon key.
func NewDirectory(baseURL, anonKey string, opts ...Option) *Directory {
	d := &Directory{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: mail.NewHTTPClient(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchBrands returns every brand in the directory.
func (d *Directory) FetchBrands(ctx context.Context) ([]Brand, error) {
	return d.query(ctx, fmt.Sprintf("/rest/v1/%s?select=*", liveBrandsTable))
}

// FetchBrandsByCategory returns the brands in one category.
func (d *Directory) FetchBrandsByCategory(ctx context.Context, category string) ([]Brand, error) {
	path := fmt.Sprintf("/rest/v1/%s?select=*&category=eq.%s", liveBrandsTable, url.QueryEscape(category))
	return d.query(ctx, path)
}

// FetchFavoriteBrands returns the brands a user has favorited, via the
// Favourites join table with the brand row embedded in each result.
func (d *Directory) FetchFavoriteBrands(ctx context.Context, userID string) ([]Brand, error) {
	path := fmt.Sprintf("/rest/v1/%s?select=*,%s(*)&user_id=eq.%s",
		favouritesTable, liveBrandsTable, url.QueryEscape(userID))

	body, err := d.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Brand *brandJSON `json:"Live Brands"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &mail.MalformedResponseError{What: "favorite brands"}
	}

	var out []Brand
	for _, row := range rows {
		if row.Brand == nil {
			continue
		}
		b := toBrand(*row.Brand, len(out))
		b.Favorite = true
		out = append(out, b)
	}
	return out, nil
}

func (d *Directory) query(ctx context.Context, path string) ([]Brand, error) {
	body, err := d.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []brandJSON
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &mail.MalformedResponseError{What: "brand directory"}
	}

	out := make([]Brand, 0, len(rows))
	for i, row := range rows {
		out = append(out, toBrand(row, i))
	}
	return out, nil
}

// get performs an authenticated read against the directory.
func (d *Directory) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", d.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", d.anonKey)
	req.Header.Set("Authorization", "Bearer "+d.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &mail.TransportError{Status: resp.StatusCode, Message: "fetch brands"}
	}
	return body, nil
}

// toBrand applies the directory's row defaults: positional ids, the default
// category bucket, and absent is_enabled meaning enabled.
func toBrand(row brandJSON, index int) Brand {
	id := row.ID
	if id == 0 {
		id = index + 1
	}
	category := row.Category
	if category == "" {
		category = "Most Popular"
	}
	enabled := true
	if row.IsEnabled != nil {
		enabled = *row.IsEnabled
	}
	return Brand{
		ID:        id,
		Name:      row.Brand,
		Email:     row.Email,
		Instagram: row.Instagram,
		Website:   row.Website,
		Category:  category,
		LogoURL:   row.LogoURL,
		Enabled:   enabled,
		Popular:   row.IsPopular,
		Place:     row.Place,
	}
}

// FindByName returns the first brand whose name matches case-insensitively,
// or false when absent.
func FindByName(list []Brand, name string) (Brand, bool) {
	for _, b := range list {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Brand{}, false
}
