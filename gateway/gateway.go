// gateway 包装上游 Django REST 后端：候选 URL 依次尝试、Token 注入、
// 失败永远以 Result 值返回，不向调用方抛 error。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Result 是每次上游调用的结构化结果。所有候选 URL 都失败时
// OK=false、Data=nil，Status 是最后一个有应答候选的 HTTP 状态
// （没有任何应答时为 0），Err 记录最后一个错误。
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage
	Err    string
}

// CallOpts 每次调用的凭据：有 Token 用 `Authorization: Token <v>`，
// 否则透传浏览器 Cookie（对应 credentials: include）。
type CallOpts struct {
	Token  string
	Cookie string
}

type Client struct {
	bases   []string
	hc      *http.Client
	timeout time.Duration
}

// New 接收候选 base URL 列表（按优先级排列）和统一的单次尝试超时。
// 原版前端只有 history 拉取带 8 秒超时，这里对所有调用统一。
func New(bases []string, timeout time.Duration) *Client {
	var cleaned []string
	for _, b := range bases {
		if b = strings.TrimRight(strings.TrimSpace(b), "/"); b != "" {
			cleaned = append(cleaned, b)
		}
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		bases:   cleaned,
		hc:      &http.Client{},
		timeout: timeout,
	}
}

func (c *Client) url(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Do 发送 JSON 请求。body 为 nil 时不带请求体。
func (c *Client) Do(ctx context.Context, method, path string, body any, o CallOpts) Result {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Result{Err: "marshal body: " + err.Error()}
		}
		payload = b
	}
	return c.attempt(ctx, method, path, "application/json", payload, o)
}

// DoRaw 透传已编码好的请求体（multipart 上传走这里）。
func (c *Client) DoRaw(ctx context.Context, method, path, contentType string, body []byte, o CallOpts) Result {
	return c.attempt(ctx, method, path, contentType, body, o)
}

func (c *Client) attempt(ctx context.Context, method, path, contentType string, payload []byte, o CallOpts) Result {
	if len(c.bases) == 0 {
		return Result{Err: "no upstream URLs configured"}
	}
	lastErr := "all URLs failed"
	lastStatus := 0 // 所有候选都没应答时保持 0
	for _, base := range c.bases {
		url := c.url(base, path)
		res, err := c.once(ctx, method, url, contentType, payload, o)
		if err != nil {
			log.Printf("gateway [%s] %s network error: %v", method, url, err)
			lastErr = err.Error()
			continue
		}
		if res.OK {
			return res
		}
		// 非 2xx：记录后换下一个候选，但保留应答过的 HTTP 状态，
		// 调用方要靠它区分“网络不通”和“上游明确拒绝”（401/403）。
		log.Printf("gateway [%s] %s -> %d", method, url, res.Status)
		lastStatus = res.Status
		lastErr = res.Err
	}
	return Result{OK: false, Status: lastStatus, Data: nil, Err: lastErr}
}

func (c *Client) once(ctx context.Context, method, url, contentType string, payload []byte, o CallOpts) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return Result{}, err
	}
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if o.Token != "" {
		req.Header.Set("Authorization", "Token "+o.Token)
	} else if o.Cookie != "" {
		req.Header.Set("Cookie", o.Cookie)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{
			Status: resp.StatusCode,
			Err:    http.StatusText(resp.StatusCode) + ": " + string(truncate(data, 200)),
		}, nil
	}
	return Result{OK: true, Status: resp.StatusCode, Data: data}, nil
}

// Download 二进制下载（xlsx 导出），返回内容与 Content-Type。
func (c *Client) Download(ctx context.Context, path string, o CallOpts) ([]byte, string, Result) {
	for _, base := range c.bases {
		url := c.url(base, path)
		ctx2, cancel := context.WithTimeout(ctx, c.timeout)
		req, err := http.NewRequestWithContext(ctx2, http.MethodGet, url, nil)
		if err != nil {
			cancel()
			continue
		}
		if o.Token != "" {
			req.Header.Set("Authorization", "Token "+o.Token)
		} else if o.Cookie != "" {
			req.Header.Set("Cookie", o.Cookie)
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			cancel()
			log.Printf("gateway download %s: %v", url, err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, resp.Header.Get("Content-Type"), Result{OK: true, Status: resp.StatusCode}
		}
		log.Printf("gateway download %s -> %d", url, resp.StatusCode)
	}
	return nil, "", Result{Err: "all URLs failed"}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
