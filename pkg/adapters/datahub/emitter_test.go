package datahub_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshay-nasa/city-scout/pkg/adapters/datahub"
	"github.com/lakshay-nasa/city-scout/pkg/catalog"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

type ingested struct {
	path    string
	headers http.Header
	body    map[string]any
}

func newGMS(t *testing.T, status int) (*httptest.Server, *[]ingested) {
	t.Helper()
	var mu sync.Mutex
	var got []ingested

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/config" {
			_, _ = io.WriteString(w, `{"noCode":"true","versions":{}}`)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		mu.Lock()
		got = append(got, ingested{path: r.URL.RequestURI(), headers: r.Header.Clone(), body: body})
		mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"message":"aspect validation failed"}`)
			return
		}
		_, _ = io.WriteString(w, `{"value":"urn"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestEmit_PostsIngestProposal(t *testing.T) {
	srv, got := newGMS(t, http.StatusOK)
	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL + "/", Token: "secret"})
	require.NoError(t, err)

	urn := catalog.DatasetURN("firestore", "itinerary_abc123", catalog.EnvProd)
	mcp := catalog.NewDatasetUpsert(urn, catalog.NewGlobalTags("Status:Draft"))
	meta := catalog.NewSystemMetadata("run-7")
	mcp.SystemMetadata = &meta

	require.NoError(t, em.Emit(context.Background(), mcp))
	require.Len(t, *got, 1)

	req := (*got)[0]
	assert.Equal(t, "/aspects?action=ingestProposal", req.path)
	assert.Equal(t, "2.0.0", req.headers.Get("X-RestLi-Protocol-Version"))
	assert.Equal(t, "Bearer secret", req.headers.Get("Authorization"))
	assert.Equal(t, "application/json", req.headers.Get("Content-Type"))

	proposal := req.body["proposal"].(map[string]any)
	assert.Equal(t, "dataset", proposal["entityType"])
	assert.Equal(t, urn, proposal["entityUrn"])
	assert.Equal(t, "UPSERT", proposal["changeType"])
	assert.Equal(t, "globalTags", proposal["aspectName"])
	assert.Equal(t, "run-7", proposal["systemMetadata"].(map[string]any)["runId"])

	aspect := proposal["aspect"].(map[string]any)
	assert.Equal(t, "application/json", aspect["contentType"])
	assert.JSONEq(t, `{"tags":[{"tag":"urn:li:tag:Status:Draft"}]}`, aspect["value"].(string))
}

func TestEmit_NoTokenNoAuthHeader(t *testing.T) {
	srv, got := newGMS(t, http.StatusOK)
	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL})
	require.NoError(t, err)

	mcp := catalog.NewDatasetUpsert("urn:x", catalog.DatasetProperties{CustomProperties: map[string]string{}})
	require.NoError(t, em.Emit(context.Background(), mcp))
	assert.Empty(t, (*got)[0].headers.Get("Authorization"))
}

func TestEmit_ServerError(t *testing.T) {
	srv, _ := newGMS(t, http.StatusUnprocessableEntity)
	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL})
	require.NoError(t, err)

	err = em.Emit(context.Background(), catalog.NewDatasetUpsert("urn:x", catalog.NewGlobalTags()))
	require.Error(t, err)
	assert.True(t, datahub.Error.Has(err))

	var statusErr *datahub.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, "aspect validation failed", statusErr.Message)
}

func TestEmit_Unreachable(t *testing.T) {
	srv, _ := newGMS(t, http.StatusOK)
	url := srv.URL
	srv.Close()

	em, err := datahub.NewEmitter(datahub.Config{Server: url})
	require.NoError(t, err)
	err = em.Emit(context.Background(), catalog.NewDatasetUpsert("urn:x", catalog.NewGlobalTags()))
	assert.True(t, datahub.Error.Has(err))
}

func TestNewEmitter_Validation(t *testing.T) {
	_, err := datahub.NewEmitter(datahub.Config{})
	assert.Error(t, err)

	_, err = datahub.NewEmitter(datahub.Config{Server: "localhost:8080"})
	assert.Error(t, err)

	em, err := datahub.NewEmitter(datahub.Config{Server: " http://gms:8080/ "})
	require.NoError(t, err)
	assert.Equal(t, "http://gms:8080", em.Server())
}

func TestEncodeProposal_NoAspect(t *testing.T) {
	_, err := datahub.EncodeProposal(catalog.MetadataChangeProposal{EntityURN: "urn:x"})
	assert.Error(t, err)
}

func TestTestConnection(t *testing.T) {
	srv, _ := newGMS(t, http.StatusOK)
	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL})
	require.NoError(t, err)

	cfg, err := em.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "true", cfg["noCode"])
}

func TestTestConnection_NotGMS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hello":"world"}`)
	}))
	defer srv.Close()

	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL})
	require.NoError(t, err)
	_, err = em.TestConnection(context.Background())
	assert.Error(t, err)
}

// The full publisher path against a live HTTP server: one failing aspect
// aborts that document only.
func TestPublisherAgainstGMS(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 3 { // tags of the first document
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	em, err := datahub.NewEmitter(datahub.Config{Server: srv.URL})
	require.NoError(t, err)
	svcPublisher := core.NewPublisher(em, core.DefaultCatalogConfig(), nil)
	listener := core.NewListener(svcPublisher, nil, nil)

	require.NoError(t, svcPublisher.RegisterSource(context.Background()))
	res := listener.Handle(context.Background(), core.Snapshot{Changes: []core.Change{
		{Kind: core.ChangeAdded, Document: core.Document{ID: "one"}},
		{Kind: core.ChangeModified, Document: core.Document{ID: "two"}},
	}})

	assert.Equal(t, core.BatchResult{Published: 1, Failed: 1}, res)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1+2+3, calls)
}
