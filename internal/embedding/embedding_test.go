package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestMockClient_Deterministic(t *testing.T) {
	c := NewMockClient(64)
	a, err := c.Embed(context.Background(), "Creatine increases muscle strength")
	require.NoError(t, err)
	b, err := c.Embed(context.Background(), "creatine increases muscle strength!")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, cosine(a, b), 1e-6)
}

func TestMockClient_RelatedTextIsCloser(t *testing.T) {
	c := NewMockClient(0)
	ctx := context.Background()
	q, _ := c.Embed(ctx, "creatine supplementation strength")
	near, _ := c.Embed(ctx, "creatine supplementation improves strength in resistance training")
	far, _ := c.Embed(ctx, "sleep deprivation impairs glucose tolerance")

	assert.Greater(t, cosine(q, near), cosine(q, far))
}

func TestOpenAIClient_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, []string{"a", "b"}, req.Input)
		assert.Equal(t, 384, req.Dimensions)

		// Out of order on purpose.
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("key", server.URL, 384)
	out, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, out)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient("key", server.URL, 0).Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	_, err := NewClient(ctx, ProviderOpenAI, "", 384)
	assert.Error(t, err)
	_, err = NewClient(ctx, ProviderGemini, "", 384)
	assert.Error(t, err)
	_, err = NewClient(ctx, "word2vec", "key", 384)
	assert.Error(t, err)

	c, err := NewClient(ctx, ProviderMock, "", 16)
	require.NoError(t, err)
	v, err := c.Embed(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, v, 16)
}
