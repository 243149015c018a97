package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankiq/bankiq-cli/internal/config"
)

func TestDocumentFileName(t *testing.T) {
	tests := []struct {
		bank      string
		accession string
		primary   string
		want      string
	}{
		{"JPMorgan Chase", "0000019617-25-000123", "jpm-10k.htm", "jpmorgan-chase-jpm-10k.htm"},
		{"  Wells Fargo ", "0000072971-25-000001", "", "wells-fargo-0000072971-25-000001.htm"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, documentFileName(tt.bank, tt.accession, tt.primary))
	}
}

func TestDownloadDocument(t *testing.T) {
	cfg = &config.Config{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>filing</html>"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "doc.htm")
	err := downloadDocument(t.Context(), srv.Client(), srv.URL, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>filing</html>", string(data))
}

func TestDownloadDocument_BadStatus(t *testing.T) {
	cfg = &config.Config{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := downloadDocument(t.Context(), srv.Client(), srv.URL, filepath.Join(t.TempDir(), "doc.htm"))
	assert.ErrorContains(t, err, "status 403")
}
