package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// UserAgentTransport injects the project User-Agent header into every
// request. GitHub rejects requests without one.
type UserAgentTransport struct {
	rt http.RoundTripper
}

func NewUserAgentTransport(rt http.RoundTripper) *UserAgentTransport {
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &UserAgentTransport{rt}
}

func (adt *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Add("User-Agent", "pam-auth-github")

	return adt.rt.RoundTrip(req) //nolint: wrapcheck
}

// NewHTTPClient builds the shared http.Client. When caFile is non-empty,
// the referenced PEM bundle is appended to the system trust roots so a
// GitHub Enterprise instance behind a private CA can be reached.
func NewHTTPClient(caFile string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport

	if caFile != "" {
		caPool, err := x509.SystemCertPool()
		if err != nil {
			caPool = x509.NewCertPool()
		}

		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("error reading CA file %s: %w", caFile, err)
		}

		if !caPool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA file %s", caFile)
		}

		httpTransport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
		httpTransport.TLSClientConfig = &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12}
		transport = httpTransport
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: NewUserAgentTransport(transport),
	}, nil
}
