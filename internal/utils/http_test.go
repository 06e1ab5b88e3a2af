package utils_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/utils"
	"github.com/madflojo/testcerts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAgentTransport(t *testing.T) {
	t.Parallel()

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pam-auth-github", r.Header.Get("User-Agent"))
	}))
	defer svr.Close()

	client := &http.Client{Transport: utils.NewUserAgentTransport(nil)}

	resp, err := client.Get(svr.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
}

func TestNewHTTPClientCustomCA(t *testing.T) {
	t.Parallel()

	ca := testcerts.NewCA()

	keyPair, err := ca.NewKeyPair()
	require.NoError(t, err)

	serverCert, err := tls.X509KeyPair(keyPair.PublicKey(), keyPair.PrivateKey())
	require.NoError(t, err)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(caFile, ca.PublicKey(), 0o600))

	svr := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	svr.TLS = &tls.Config{Certificates: []tls.Certificate{serverCert}} //nolint:gosec
	svr.StartTLS()

	defer svr.Close()

	client, err := utils.NewHTTPClient(caFile, 10*time.Second)
	require.NoError(t, err)

	resp, err := client.Get(svr.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHTTPClientErrors(t *testing.T) {
	t.Parallel()

	_, err := utils.NewHTTPClient(filepath.Join(t.TempDir(), "missing.pem"), time.Second)
	require.ErrorContains(t, err, "error reading CA file")

	notPEM := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(notPEM, []byte("not a certificate"), 0o600))

	_, err = utils.NewHTTPClient(notPEM, time.Second)
	require.ErrorContains(t, err, "no certificates found")

	client, err := utils.NewHTTPClient("", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, client.Timeout)
}
