package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/loomery/loom/source"

	"golang.org/x/net/publicsuffix"
)

// HTTPSources is a source.Dialer for sources that are polled over
// HTTP.  A source name maps (via the config) to a URL that should
// return JSON; a response identical to the previous one counts as "no
// new value".
//
// All connections share one client (and so one cookie jar), since
// http.Clients cache TCP connections.
type HTTPSources struct {
	URLs map[string]string

	client *http.Client
}

func NewHTTPSources(urls map[string]string, timeout time.Duration) (*HTTPSources, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSources{
		URLs: urls,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// Has reports whether the given source name is one of ours.
func (h *HTTPSources) Has(name string) bool {
	_, have := h.URLs[name]
	return have
}

func (h *HTTPSources) Dial(ctx context.Context, name string) (source.Conn, error) {
	url, have := h.URLs[name]
	if !have {
		return nil, &source.ConnectionError{Name: name, Err: errNoURL}
	}
	return &httpConn{
		client: h.client,
		url:    url,
	}, nil
}

var errNoURL = &noURLError{}

type noURLError struct{}

func (e *noURLError) Error() string {
	return "no URL configured"
}

type httpConn struct {
	client *http.Client
	url    string

	last []byte
}

func (c *httpConn) Poll() (interface{}, bool, error) {
	resp, err := c.client.Get(c.url)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, &httpStatusError{status: resp.Status}
	}

	if c.last != nil && bytes.Equal(bs, c.last) {
		return nil, false, nil
	}
	c.last = bs

	var x interface{}
	if err = json.Unmarshal(bs, &x); err != nil {
		x = string(bs)
	}
	return x, true, nil
}

func (c *httpConn) Close() error {
	return nil
}

type httpStatusError struct {
	status string
}

func (e *httpStatusError) Error() string {
	return "poll status " + e.status
}
