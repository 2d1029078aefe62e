package search

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

func TestQuery_Shape(t *testing.T) {
	t.Parallel()

	q := Query("oud", 20, 10)
	assert.Equal(t, 20, q["from"])
	assert.Equal(t, 10, q["size"])

	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "oud", mm["query"])
	assert.Equal(t, []string{"name^2", "description"}, mm["fields"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestDocumentOf(t *testing.T) {
	t.Parallel()

	img := "https://cdn/x.jpg"
	p := models.Product{
		ID:        uuid.New(),
		Name:      "Oud",
		Price:     decimal.RequireFromString("12.5"),
		Image:     &img,
		Available: true,
	}

	d := DocumentOf(p)
	assert.Equal(t, p.ID.String(), d.ID)
	assert.Equal(t, "12.50", d.Price)
	assert.Equal(t, img, d.Image)
}

func TestDecodeHits(t *testing.T) {
	t.Parallel()

	body := `{"hits":{"total":{"value":2},"hits":[
		{"_source":{"id":"a","name":"Oud"}},
		{"_source":{"id":"b","name":"Musk"}}
	]}}`

	total, docs, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, docs, 2)
	assert.Equal(t, "Musk", docs[1].Name)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var idx Index = Noop{}
	total, docs, err := idx.Search(context.Background(), "x", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, docs)
}
