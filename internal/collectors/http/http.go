package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"subprovider/internal/collectors"
	"subprovider/internal/logger"
)

const userAgent = "subprovider"

type URLCollector struct{}

func (c *URLCollector) Collect(ctx context.Context, src collectors.Source) ([]string, error) {
	if src.URL == "" {
		return nil, fmt.Errorf("missing url for subscription '%s'", src.Name)
	}

	client, err := newClient(src)
	if err != nil {
		return nil, err
	}

	var body []byte
	for i := 0; i <= src.Retries; i++ {
		logger.Log.Debugf("Fetching %s (Attempt %d/%d)", src.URL, i+1, src.Retries+1)
		body, err = fetch(ctx, client, src.URL)
		if err == nil {
			break
		}
		if i < src.Retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch failed after retries: %w", err)
	}

	return collectors.ParseSubscription(string(body)), nil
}

func fetch(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status code: %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return b, nil
}

// newClient routes through src.Proxy when set. SOCKS proxies dial through
// x/net/proxy; http(s) proxies use the transport's CONNECT support.
func newClient(src collectors.Source) (*http.Client, error) {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if src.Proxy == "" {
		return client, nil
	}

	pURL, err := url.Parse(src.Proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}

	switch pURL.Scheme {
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(pURL)}
	default:
		dialer, err := proxy.FromURL(pURL, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("unsupported proxy: %w", err)
		}
		transport := &http.Transport{}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		client.Transport = transport
	}
	logger.Log.Debugf("HTTP Collector using proxy: %s", src.Proxy)
	return client, nil
}

func init() {
	collectors.Register("http", func() collectors.Collector {
		return &URLCollector{}
	})
}
