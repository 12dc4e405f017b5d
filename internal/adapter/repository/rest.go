package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-studio/internal/model"
)

// RESTStore speaks the remote-store protocol: GET, PUT and DELETE on
// {base}/resume with a JSON body.
type RESTStore struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewRESTStore targets base. A nil client gets a 15s timeout.
func NewRESTStore(base, token string, client *http.Client) (*RESTStore, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store url %q", base)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTStore{
		endpoint: strings.TrimRight(u.String(), "/") + "/resume",
		token:    token,
		client:   client,
	}, nil
}

func (s *RESTStore) Load(ctx context.Context) (*model.Resume, error) {
	resp, err := s.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, statusError("load", resp)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 || string(bytes.TrimSpace(b)) == "null" {
		return nil, nil
	}
	return decode(b)
}

func (s *RESTStore) Save(ctx context.Context, r model.Resume) error {
	b, err := encode(r)
	if err != nil {
		return err
	}
	resp, err := s.do(ctx, http.MethodPut, b)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError("save", resp)
	}
	return nil
}

// Clear treats 404 and 405 as already cleared.
func (s *RESTStore) Clear(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodDelete, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode/100 == 2,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusMethodNotAllowed:
		return nil
	}
	return statusError("clear", resp)
}

func (s *RESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RESTStore) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, s.endpoint, err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s snapshot: remote store returned %s: %s", op, resp.Status, strings.TrimSpace(string(msg)))
}
