package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

const (
	rpcPath    = "/json"
	uploadPath = "/upload"
)

// Error is an error object returned by the server in an RPC reply.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     int64         `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
	ID     int64           `json:"id"`
}

type uploadResponse struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
	Error   string   `json:"error,omitempty"`
}

// HTTPClient talks JSON-RPC to the server over HTTP.
type HTTPClient struct {
	url      string
	username string
	password string
	http     *http.Client

	mu    sync.Mutex
	reqID int64
}

// NewHTTP creates a client for the server at baseURL. Empty credentials
// disable basic auth.
func NewHTTP(baseURL, username, password string) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		url:      strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

func (c *HTTPClient) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqID++
	return c.reqID
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// call performs one RPC and decodes its result into out (may be nil).
func (c *HTTPClient) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	data, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: c.nextID()})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+rpcPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		rpcResp.Result = json.RawMessage("null")
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func (c *HTTPClient) AddTorrents(ctx context.Context, torrents []PendingTorrent) error {
	return c.call(ctx, "web.add_torrents", nil, torrents)
}

func (c *HTTPClient) GetTorrentInfo(ctx context.Context, path string) (*TorrentInfo, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "web.get_torrent_info", &raw, path); err != nil {
		return nil, err
	}
	// the server answers false (or null) for files it cannot parse
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false":
		return nil, nil
	}
	info := &TorrentInfo{}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("decoding torrent info: %w", err)
	}
	return info, nil
}

func (c *HTTPClient) DownloadTorrentFromURL(ctx context.Context, url string) (string, error) {
	var filename string
	if err := c.call(ctx, "web.download_torrent_from_url", &filename, url); err != nil {
		return "", err
	}
	return filename, nil
}

func (c *HTTPClient) CreateTorrent(ctx context.Context, req CreateRequest) (string, error) {
	var path string
	if err := c.call(ctx, "web.create_torrent", &path, req); err != nil {
		return "", err
	}
	return path, nil
}

// UploadTorrentFile sends a torrent file as multipart/form-data and returns
// the server-side path it was stored under.
func (c *HTTPClient) UploadTorrentFile(ctx context.Context, name string, r io.Reader) (string, error) {
	body := bytes.Buffer{}
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+uploadPath, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if !ur.Success || len(ur.Files) == 0 {
		if ur.Error != "" {
			return "", errors.New(ur.Error)
		}
		return "", errors.New("upload rejected")
	}
	return ur.Files[0], nil
}

// RenderTemplate fetches a server-rendered HTML fragment.
func (c *HTTPClient) RenderTemplate(ctx context.Context, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
