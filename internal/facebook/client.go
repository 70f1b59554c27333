package facebook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com"

// httpDoer 抽象 HTTP 客户端，便于测试注入。
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportError marks a failure of the primary transport path before any
// usable platform response was obtained. The delete action falls back to the
// raw HTTP path only for this error class.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GraphAPI 是发布与删除动作依赖的平台传输层。
// 主路径操作返回的 error 仅用于标记传输级失败（*TransportError）；
// 应用级失败一律体现在 Result 中。原生回退路径操作不区分失败类别。
type GraphAPI interface {
	PublishText(ctx context.Context, message string) (Result, error)
	PublishPhoto(ctx context.Context, message, imagePath string) Result
	DeletePost(ctx context.Context, postID string) (Result, error)
	DeletePostFallback(ctx context.Context, postID string) Result
}

// Config holds the Graph API settings required for every call.
type Config struct {
	GraphVersion string
	PageID       string
	AccessToken  string
}

// Client performs the actual network calls against the Graph content API.
// The primary doer is an ordinary HTTP client; the raw doer mirrors the
// legacy cURL path with certificate verification disabled for this
// environment's outbound calls.
type Client struct {
	http    httpDoer
	raw     httpDoer
	baseURL string
	version string
	pageID  string
	token   string
}

// NewClient 创建 Graph API 客户端，所有外呼请求统一 30 秒超时。
func NewClient(cfg Config) *Client {
	version := strings.TrimSpace(cfg.GraphVersion)
	if version == "" {
		version = "v23.0"
	}

	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		raw: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		baseURL: defaultBaseURL,
		version: version,
		pageID:  strings.TrimSpace(cfg.PageID),
		token:   strings.TrimSpace(cfg.AccessToken),
	}
}

// SetHTTPClient 替换两条路径的 HTTP 客户端，传入 nil 时恢复默认。
func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
		c.raw = c.http
		return
	}
	c.http = client
	c.raw = client
}

// SetBaseURL 覆盖 Graph API 根地址，用于对接测试服务器。
func (c *Client) SetBaseURL(base string) {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return
	}
	c.baseURL = trimmed
}

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL + "/" + c.version + "/" + strings.Join(parts, "/")
}

// PublishText submits a feed post. Success requires HTTP 200 and an id in the
// decoded body; any other combination is reported through the Result with the
// platform's own error message when one is present.
func (c *Client) PublishText(ctx context.Context, message string) (Result, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.pageID, "feed"), strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, decodeErr := decodeBody(resp.Body)
	id := stringField(data, "id")

	if resp.StatusCode == http.StatusOK && decodeErr == nil && id != "" {
		return Result{Success: true, PostID: id, Data: data}, nil
	}

	return failure(graphErrorMessage(data, fmt.Sprintf("publish failed with status %d", resp.StatusCode))), nil
}

// PublishPhoto uploads an image post through the raw multipart path. The SDK
// style path is never used here; multipart upload only works reliably against
// the plain endpoint.
func (c *Client) PublishPhoto(ctx context.Context, message, imagePath string) Result {
	file, err := os.Open(imagePath)
	if err != nil {
		return failure("image file not found: " + imagePath)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("message", message); err != nil {
		return failure("build upload request: " + err.Error())
	}
	if err := writer.WriteField("access_token", c.token); err != nil {
		return failure("build upload request: " + err.Error())
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename="%s"`, filepath.Base(imagePath)))
	header.Set("Content-Type", detectMimeType(imagePath))

	part, err := writer.CreatePart(header)
	if err != nil {
		return failure("build upload request: " + err.Error())
	}
	if _, err := io.Copy(part, file); err != nil {
		return failure("read image file: " + err.Error())
	}
	if err := writer.Close(); err != nil {
		return failure("build upload request: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.pageID, "photos"), &body)
	if err != nil {
		return failure("build upload request: " + err.Error())
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.raw.Do(req)
	if err != nil {
		return failure("network error: " + err.Error())
	}
	defer resp.Body.Close()

	data, decodeErr := decodeBody(resp.Body)
	id := stringField(data, "id")

	if resp.StatusCode == http.StatusOK && decodeErr == nil && id != "" {
		return Result{Success: true, PostID: id, Data: data}
	}

	return failure(graphErrorMessage(data, "photo upload failed"))
}

// DeletePost removes a published post through the primary path.
func (c *Client) DeletePost(ctx context.Context, postID string) (Result, error) {
	endpoint := c.endpoint(postID) + "?access_token=" + url.QueryEscape(c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, decodeErr := decodeBody(resp.Body)

	if resp.StatusCode == http.StatusOK && decodeErr == nil && boolField(data, "success") {
		return Result{Success: true, Message: "post deleted", Data: data}, nil
	}

	return failure(graphErrorMessage(data, fmt.Sprintf("delete failed with status %d", resp.StatusCode))), nil
}

// DeletePostFallback replays the delete through the raw path, sending the
// access token as a form field. An empty Error on failure means the platform
// offered nothing more specific than what the caller already has.
func (c *Client) DeletePostFallback(ctx context.Context, postID string) Result {
	form := url.Values{}
	form.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(postID), strings.NewReader(form.Encode()))
	if err != nil {
		return failure("build delete request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.raw.Do(req)
	if err != nil {
		return failure("network error: " + err.Error())
	}
	defer resp.Body.Close()

	data, decodeErr := decodeBody(resp.Body)

	if resp.StatusCode == http.StatusOK && decodeErr == nil && boolField(data, "success") {
		return Result{Success: true, Message: "post deleted via fallback", Data: data}
	}

	return failure(graphErrorMessage(data, ""))
}

func decodeBody(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// graphErrorMessage 优先返回平台自身的 error.message，否则使用 fallback。
func graphErrorMessage(data map[string]any, fallback string) string {
	if errField, ok := data["error"].(map[string]any); ok {
		if message, ok := errField["message"].(string); ok && message != "" {
			return message
		}
	}
	return fallback
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

func boolField(data map[string]any, key string) bool {
	value, _ := data[key].(bool)
	return value
}

func detectMimeType(imagePath string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
