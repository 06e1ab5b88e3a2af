package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/jkroepke/pam-auth-github/internal/utils"
	"github.com/zitadel/logging"
)

// Pagination URL patterns
// https://docs.github.com/en/rest/using-the-rest-api/using-pagination-in-the-rest-api
var (
	reNext = regexp.MustCompile("<([^>]+)>; rel=\"next\"")
	reLast = regexp.MustCompile("<([^>]+)>; rel=\"last\"")
)

// APIError is a non-OK response from the GitHub REST API. Callers inspect
// StatusCode to distinguish "not a member" style answers from real failures.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error from GitHub API %s: http status code: %d; message: %s", e.URL, e.StatusCode, e.Message)
}

func get[T any](ctx context.Context, httpClient *http.Client, accessToken, apiURL string, data *T) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request context with URL %s: %w", apiURL, err)
	}

	req.Header.Add("Authorization", utils.StringConcat("Bearer ", accessToken))
	req.Header.Add("Accept", "application/vnd.github+json")
	req.Header.Add("X-GitHub-Api-Version", apiVersion)

	logger, _ := logging.FromContext(ctx)
	logger.LogAttrs(ctx, slog.LevelDebug, "GitHub API request", slog.String("url", apiURL))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling GitHub API %s: %w", apiURL, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read body from GitHub API %s: http status code: %d; error: %w", apiURL, resp.StatusCode, err)
	}

	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{URL: apiURL, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err = json.Unmarshal(respBody, data); err != nil {
		return "", fmt.Errorf("unable to decode JSON from GitHub API %s: '%s': %w", apiURL, respBody, err)
	}

	return getPagination(apiURL, resp), nil
}

func getPagination(apiURL string, resp *http.Response) string {
	if resp == nil {
		return ""
	}

	links := resp.Header.Get("Link")
	if len(reLast.FindStringSubmatch(links)) == 0 {
		return ""
	}

	lastPageURL := reLast.FindStringSubmatch(links)[1]
	if apiURL == lastPageURL {
		return ""
	}

	if len(reNext.FindStringSubmatch(links)) > 1 {
		return reNext.FindStringSubmatch(links)[1]
	}

	return ""
}
