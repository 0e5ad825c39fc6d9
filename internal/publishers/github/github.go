package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"subprovider/internal/logger"
	"subprovider/internal/publishers"
)

// Publisher commits the document to a repository through the GitHub
// contents API, creating or updating the file at params["path"].
type Publisher struct{}

type githubFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
	Sha     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type githubFileResponse struct {
	Sha string `json:"sha"`
}

func (p *Publisher) Publish(ctx context.Context, doc publishers.Document, params map[string]interface{}) error {
	token := publishers.String(params, "token")
	owner := publishers.String(params, "owner")
	repo := publishers.String(params, "repo")
	path := publishers.String(params, "path")
	branch := publishers.String(params, "branch")
	msg := publishers.String(params, "message")

	apiBase := publishers.String(params, "api_url")
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	apiBase = strings.TrimRight(apiBase, "/")

	timeout := publishers.Duration(params, publishers.ParamTimeout, 30*time.Second)
	retries := publishers.Int(params, publishers.ParamRetries)

	if token == "" || owner == "" || repo == "" || path == "" {
		return fmt.Errorf("github publisher requires token, owner, repo, and path")
	}
	if msg == "" {
		msg = fmt.Sprintf("Update %s subscription [subprovider]", doc.Provider)
	}

	path = strings.TrimPrefix(path, "/")
	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", apiBase, owner, repo, path)

	client, err := newClient(timeout, publishers.String(params, publishers.ParamProxyURL))
	if err != nil {
		return err
	}

	// 1. current sha, if the file exists
	respGet, err := doWithRetry(ctx, retries, "Fetching file info", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		setHeaders(req, token)
		if branch != "" {
			q := req.URL.Query()
			q.Add("ref", branch)
			req.URL.RawQuery = q.Encode()
		}
		return client.Do(req)
	}, func(code int) bool { return code == http.StatusOK || code == http.StatusNotFound })
	if err != nil {
		return fmt.Errorf("github fetch failed after retries: %w", err)
	}
	defer respGet.Body.Close()

	var currentSha string
	if respGet.StatusCode == http.StatusOK {
		var existing githubFileResponse
		if err := json.NewDecoder(respGet.Body).Decode(&existing); err != nil {
			return fmt.Errorf("failed to parse github response: %w", err)
		}
		currentSha = existing.Sha
		logger.Log.Debugf("GitHub: File exists (SHA: %s), updating...", currentSha)
	} else {
		logger.Log.Debugf("GitHub: File not found, creating new...")
	}

	// 2. upload
	jsonBody, err := json.Marshal(githubFileRequest{
		Message: msg,
		Content: base64.StdEncoding.EncodeToString(publishers.Payload(doc, params)),
		Sha:     currentSha,
		Branch:  branch,
	})
	if err != nil {
		return err
	}

	respPut, err := doWithRetry(ctx, retries, "Uploading file", func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, apiURL, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		setHeaders(req, token)
		req.Header.Set("Content-Type", "application/json")
		return client.Do(req)
	}, func(code int) bool { return code >= 200 && code < 300 })
	if err != nil {
		return fmt.Errorf("github upload failed after retries: %w", err)
	}
	respPut.Body.Close()

	return nil
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

// doWithRetry runs do until accept(status) holds, up to retries extra
// attempts one second apart. The accepted response is returned open.
func doWithRetry(ctx context.Context, retries int, what string, do func() (*http.Response, error), accept func(int) bool) (*http.Response, error) {
	var err error
	for i := 0; i <= retries; i++ {
		logger.Log.Debugf("GitHub: %s (Attempt %d/%d)", what, i+1, retries+1)

		var resp *http.Response
		resp, err = do()
		if err == nil && accept(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			err = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if i < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
	return nil, err
}

func newClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	} else {
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("unsupported proxy: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy %s cannot dial with context", u.Scheme)
		}
		client.Transport = &http.Transport{DialContext: cd.DialContext}
	}
	logger.Log.Debugf("GitHub Publisher using proxy: %s", proxyURL)
	return client, nil
}

func init() {
	publishers.Register("github", func() publishers.Publisher { return &Publisher{} })
}
