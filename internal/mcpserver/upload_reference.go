package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

type uploadResult struct {
	URL           string `json:"url"`
	Filename      string `json:"filename"`
	ReferenceLine string `json:"referenceLine"`
}

func (s *Server) uploadReference(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filename := ""
	if v, fErr := req.RequireString("filename"); fErr == nil {
		filename = v
	}

	if strings.HasPrefix(rawURL, "data:") {
		if filename == "" {
			filename = "reference"
		}
		res, sErr := s.uploads.SaveDataURI(filename, rawURL)
		if sErr != nil {
			return mcp.NewToolResultError(sErr.Error()), nil
		}
		return uploadResultFor(res.URL, res.Filename), nil
	}

	body, err := s.fetchHTTP(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = body.Close() }()

	if filename == "" {
		filename = filenameFromURL(rawURL)
	}
	res, err := s.uploads.Save(filename, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return uploadResultFor(res.URL, res.Filename), nil
}

func uploadResultFor(u, filename string) *mcp.CallToolResult {
	out, _ := json.Marshal(uploadResult{
		URL:           u,
		Filename:      filename,
		ReferenceLine: "Image: " + u,
	})
	return mcp.NewToolResultText(string(out))
}

// fetchHTTP opens a download from an http(s) URL. The caller closes the body;
// the store enforces the size cap while reading it.
func (s *Server) fetchHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only data, http and https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// filenameFromURL takes the last path element of a URL, or "reference".
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err == nil {
		base := path.Base(parsed.Path)
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	return "reference"
}
