// Package search keeps an Elasticsearch index of the catalog.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	Available   bool   `json:"available"`
}

func DocumentOf(p models.Product) Document {
	d := Document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		Available:   p.Available,
	}
	if p.Image != nil {
		d.Image = *p.Image
	}
	return d
}

type Index interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []Document, error)
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewClient(cfg Config, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("connecting to elasticsearch", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	l.Info("connected to elasticsearch")
	return client, nil
}

type ES struct {
	Client *elasticsearch.Client
	Index  string
}

// EnsureIndex creates the index with its mapping when it is missing.
func (s *ES) EnsureIndex(ctx context.Context) error {
	res, err := s.Client.Indices.Exists([]string{s.Index}, s.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":          map[string]any{"type": "keyword"},
				"name":        map[string]any{"type": "text"},
				"description": map[string]any{"type": "text"},
				"category":    map[string]any{"type": "keyword"},
				"price":       map[string]any{"type": "scaled_float", "scaling_factor": 100},
				"image":       map[string]any{"type": "keyword", "index": false},
				"available":   map[string]any{"type": "boolean"},
			},
		},
	}
	body, err := encode(mapping)
	if err != nil {
		return err
	}

	res, err = s.Client.Indices.Create(s.Index,
		s.Client.Indices.Create.WithContext(ctx),
		s.Client.Indices.Create.WithBody(body),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

func (s *ES) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := encode(DocumentOf(p))
	if err != nil {
		return err
	}

	res, err := s.Client.Index(s.Index, body,
		s.Client.Index.WithContext(ctx),
		s.Client.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

func (s *ES) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.Client.Delete(s.Index, id, s.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

func (s *ES) Search(ctx context.Context, query string, from, size int) (int64, []Document, error) {
	body, err := encode(Query(query, from, size))
	if err != nil {
		return 0, nil, err
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	return decodeHits(res.Body)
}

// Query matches name (boosted) and description with typo tolerance.
func Query(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}
}

func decodeHits(r io.Reader) (int64, []Document, error) {
	var out struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	docs := make([]Document, len(out.Hits.Hits))
	for i, hit := range out.Hits.Hits {
		docs[i] = hit.Source
	}
	return out.Hits.Total.Value, docs, nil
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("search encode: %w", err)
	}
	return &buf, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("%s: %s: %s", op, status, bytes.TrimSpace(b))
}

// Noop answers searches with nothing when Elasticsearch is not configured.
type Noop struct{}

func (Noop) IndexProduct(context.Context, models.Product) error { return nil }
func (Noop) DeleteProduct(context.Context, string) error        { return nil }
func (Noop) Search(context.Context, string, int, int) (int64, []Document, error) {
	return 0, []Document{}, nil
}
