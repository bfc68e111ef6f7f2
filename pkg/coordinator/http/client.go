// Package http implements a participant.Coordinator over the coordinator's
// HTTP API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	"github.com/absmach/fedlearn/pkg/fl"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 256 << 20

var errMissingURL = errors.New("coordinator URL is required")

type Config struct {
	URL     string        `env:"URL"     envDefault:"http://localhost:8081"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

var _ participant.Coordinator = (*client)(nil)

type client struct {
	baseURL    string
	httpClient *http.Client
	session    coordinator.Session
}

// NewClient returns a coordinator client. Requests carry the session token as
// a bearer token and submissions are signed with the session keys.
func NewClient(cfg Config, session coordinator.Session) (participant.Coordinator, error) {
	if cfg.URL == "" {
		return nil, errMissingURL
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid coordinator URL: %w", err)
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	return &client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		session: session,
	}, nil
}

func (c *client) Heartbeat(ctx context.Context) (participant.Heartbeat, error) {
	resp, err := c.do(ctx, http.MethodGet, "/heartbeat/"+url.PathEscape(c.session.ParticipantID), "", nil)
	if err != nil {
		return participant.Heartbeat{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return participant.Heartbeat{}, statusError(resp)
	}

	var status fl.RoundStatus
	if err := decodeBody(resp, &status); err != nil {
		return participant.Heartbeat{}, fmt.Errorf("failed to decode heartbeat: %w", err)
	}

	return participant.HeartbeatFromStatus(status)
}

func (c *client) FetchGlobalModel(ctx context.Context) (*fl.Model, error) {
	resp, err := c.do(ctx, http.MethodGet, "/model", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		return nil, statusError(resp)
	}

	var model fl.Model
	if err := decodeBody(resp, &model); err != nil {
		return nil, fmt.Errorf("failed to decode global model: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("coordinator sent an invalid global model: %w", err)
	}

	return &model, nil
}

func (c *client) SubmitLocalModel(ctx context.Context, round uint64, model fl.Model) error {
	update, err := c.session.NewUpdate(round, model)
	if err != nil {
		return err
	}
	body, err := fl.EncodeCBOR(update)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/update", fl.CBORContentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", participant.ErrModelMismatch, statusError(resp))
	default:
		return statusError(resp)
	}
}

func (c *client) Session() ([]byte, error) {
	return c.session.Marshal()
}

func (c *client) do(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", fl.CBORContentType+", application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach coordinator: %w", err)
	}

	return resp, nil
}

// decodeBody decodes CBOR or JSON depending on the response content type.
func decodeBody(resp *http.Response, v any) error {
	body := io.LimitReader(resp.Body, maxBodySize)
	if strings.Contains(resp.Header.Get("Content-Type"), fl.CBORContentType) {
		return fl.NewCBORDecoder(body).Decode(v)
	}

	return json.NewDecoder(body).Decode(v)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return fmt.Errorf("coordinator returned error: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
