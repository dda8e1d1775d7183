package httpcache

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"

	"github.com/tokenvote/tokenvote/lib/common"
)

// Client caches whole responses of the results endpoints. Tallying a round
// reads every published ballot, so the computed pages are kept until the
// TTL runs out or a publish invalidates the round's prefix.
type Client struct {
	adapter Adapter
	ttl     time.Duration
	logger  logging.Logger
}

type ClientOption func(c *Client) error

func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger: common.NopLogger(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.adapter == nil {
		return nil, errors.New("cache client adapter is nil")
	}

	return c, nil
}

func WithAdapter(a Adapter) ClientOption {
	return func(c *Client) error {
		c.adapter = a
		return nil
	}
}

func WithExpire(ttl time.Duration) ClientOption {
	return func(c *Client) error {
		c.ttl = ttl
		return nil
	}
}

func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WrapHandlerFunc serves GET responses from the cache, recording and
// storing a miss before passing it through. Non-GET requests, error
// responses and responses marked Cache-Control: no-store are never
// cached.
func (c *Client) WrapHandlerFunc(handlerFunc http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			handlerFunc(w, r)
			return
		}

		sortURLParams(r.URL)
		key := r.URL.String()

		if resp, ok := c.adapter.Get(key); ok {
			if resp.Expiration.IsZero() || resp.Expiration.After(time.Now()) {
				writeResponse(w, resp.Header, resp.StatusCode, resp.Value)
				c.logger.Debug("cache hit", "url", key)
				return
			}
			c.adapter.Remove(key)
		}

		rec := httptest.NewRecorder()
		handlerFunc(rec, r)
		result := rec.Result()
		body := rec.Body.Bytes()

		if result.StatusCode < 400 && !noStore(result.Header) {
			expiration := expireAt(c.ttl)
			c.adapter.Set(key, &Response{
				Value:      body,
				StatusCode: result.StatusCode,
				Header:     result.Header,
				Expiration: expiration,
			}, expiration)
			c.logger.Debug("cache store", "url", key, "code", result.StatusCode)
		}

		writeResponse(w, result.Header, result.StatusCode, body)
	}
}

// InvalidatePrefix drops cached pages whose key starts with prefix, when
// the adapter supports enumeration. Adapters that cannot enumerate fall
// back to TTL expiry.
func (c *Client) InvalidatePrefix(prefix string) {
	type prefixRemover interface {
		RemoveByPrefix(prefix string)
	}
	if remover, ok := c.adapter.(prefixRemover); ok {
		remover.RemoveByPrefix(prefix)
		c.logger.Debug("cache invalidated", "prefix", prefix)
	}
}

// noStore reports whether the handler marked the response as not
// cacheable, e.g. a gated tally revealed to an admin ahead of the
// round's result time.
func noStore(header http.Header) bool {
	return strings.Contains(strings.ToLower(header.Get("Cache-Control")), "no-store")
}

func writeResponse(w http.ResponseWriter, header http.Header, statusCode int, body []byte) {
	for k, v := range header {
		w.Header().Set(k, strings.Join(v, ","))
	}
	w.WriteHeader(statusCode)
	w.Write(body)
}

func expireAt(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func sortURLParams(u *url.URL) {
	params := u.Query()
	for _, p := range params {
		sort.Strings(p)
	}
	u.RawQuery = params.Encode()
}
