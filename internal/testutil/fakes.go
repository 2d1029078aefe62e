package testutil

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/Skotchmaster/esscera_store/internal/imagehost"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/payment"
	"github.com/Skotchmaster/esscera_store/internal/search"
)

const FakeImageBase = "https://images.test/"

// ImageHost records uploads and deletes without touching the network.
type ImageHost struct {
	mu        sync.Mutex
	UploadErr error
	DeleteErr error
	Uploads   []string
	Deletes   []string
}

func (h *ImageHost) Upload(_ context.Context, r io.Reader, filename string) (imagehost.Uploaded, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.UploadErr != nil {
		return imagehost.Uploaded{}, h.UploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return imagehost.Uploaded{}, err
	}
	id := "products/" + strings.TrimSuffix(filename, ".jpg")
	h.Uploads = append(h.Uploads, filename)
	return imagehost.Uploaded{URL: FakeImageBase + id + ".jpg", PublicID: id}, nil
}

func (h *ImageHost) Delete(_ context.Context, publicID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Deletes = append(h.Deletes, publicID)
	return h.DeleteErr
}

func (h *ImageHost) Owns(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, FakeImageBase)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, ".jpg"), true
}

func (h *ImageHost) DeleteCalls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Deletes...)
}

type Gateway struct {
	Err    error
	Calls  int
	Intent payment.Intent
}

func (g *Gateway) CreateIntent(_ context.Context, order *models.Order) (payment.Intent, error) {
	g.Calls++
	if g.Err != nil {
		return payment.Intent{}, g.Err
	}
	if g.Intent.ID == "" {
		return payment.Intent{ID: "pi_" + order.ID.String(), ClientSecret: "secret_" + order.ID.String()}, nil
	}
	return g.Intent, nil
}

// Index is an in-memory search index matching on name substrings.
type Index struct {
	mu   sync.Mutex
	Err  error
	Docs map[string]search.Document
}

func (x *Index) IndexProduct(_ context.Context, p models.Product) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return x.Err
	}
	if x.Docs == nil {
		x.Docs = map[string]search.Document{}
	}
	x.Docs[p.ID.String()] = search.DocumentOf(p)
	return nil
}

func (x *Index) DeleteProduct(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return x.Err
	}
	delete(x.Docs, id)
	return nil
}

func (x *Index) Search(_ context.Context, query string, from, size int) (int64, []search.Document, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return 0, nil, x.Err
	}
	var hits []search.Document
	for _, d := range x.Docs {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(query)) {
			hits = append(hits, d)
		}
	}
	total := int64(len(hits))
	if from >= len(hits) {
		return total, []search.Document{}, nil
	}
	end := from + size
	if end > len(hits) {
		end = len(hits)
	}
	return total, hits[from:end], nil
}

var ErrFake = errors.New("fake failure")
