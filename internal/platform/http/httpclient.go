// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when ClientOptions.UserAgent is empty.
const DefaultUserAgent = "market-tracker/1.0"

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	Timeout   time.Duration // リクエスト全体のタイムアウト（0の場合は10秒）
	UserAgent string        // 全リクエストに付与するUser-Agent
}

// NewHTTPClient は外部マーケットAPI呼び出し用に設定されたHTTPクライアントを作成します。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
//   - 一部の公開APIはUser-Agentの無いリクエストを拒否するため、常に付与する
func NewHTTPClient(opts ClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10, // 株式は銘柄ごとに並行リクエストするため
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{base: t, userAgent: opts.UserAgent},
	}
}

// userAgentTransport sets the User-Agent header on requests that have none.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// RoundTripperはリクエストを変更してはならないため複製する
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
