package pprof_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpinghuang/tiktok-void-backend/internal/pprof"
)

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(pprof.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/pprof/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestStart_Close(t *testing.T) {
	srv := pprof.Start("127.0.0.1:0", nil)
	require.NotNil(t, srv)
	assert.NoError(t, srv.Close())
}
