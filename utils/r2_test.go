package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volleyball-live-system/config"
)

func TestR2StorePutObject(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewR2Store(context.Background(), config.StorageConfig{
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		Bucket:          "reports",
		Endpoint:        srv.URL,
		PublicBaseURL:   "https://cdn.example.com/",
	})
	require.NoError(t, err)

	url, err := store.PutObject(context.Background(), "reports/m-1/abc.json", []byte(`{"a":1}`), "application/json")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/reports/m-1/abc.json", url)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/reports/reports/m-1/abc.json", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Contains(t, string(gotBody), `{"a":1}`)
}

func TestNewR2StoreRequiresBucket(t *testing.T) {
	_, err := NewR2Store(context.Background(), config.StorageConfig{AccountID: "acc"})
	assert.Error(t, err)

	_, err = NewR2Store(context.Background(), config.StorageConfig{Bucket: "reports"})
	assert.Error(t, err)
}
