package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
)

const (
	blobsPath = "/api/blobs"
	blobPath  = "/api/blobs/{recordID}"
)

type listResponse struct {
	IDs []string `json:"ids"`
}

type httpSyncTransport struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPSyncTransport constructs the resty-based [SyncTransport] for the
// relay at cfg.HTTPAddress. Requests carry cfg.Token as a bearer token.
func NewHTTPSyncTransport(cfg config.ClientAdapter, log *logger.Logger) (SyncTransport, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if token := strings.TrimSpace(cfg.Token); token != "" {
		client.SetAuthToken(token)
	}

	return &httpSyncTransport{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Push implements [SyncTransport] with PUT /api/blobs/{recordID}.
func (h *httpSyncTransport) Push(ctx context.Context, recordID string, payload []byte) error {
	if recordID == "" {
		return ErrInvalidRecordID
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("recordID", recordID).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Put(blobPath)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Warn().Err(err).Str("record_id", recordID).Int("status", resp.StatusCode()).Msg("push rejected")
		return err
	}

	h.logger.Debug().Str("record_id", recordID).Int("bytes", len(payload)).Msg("payload pushed")
	return nil
}

// Pull implements [SyncTransport] with GET /api/blobs/{recordID}.
func (h *httpSyncTransport) Pull(ctx context.Context, recordID string) ([]byte, error) {
	if recordID == "" {
		return nil, ErrInvalidRecordID
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("recordID", recordID).
		Get(blobPath)
	if err != nil {
		return nil, fmt.Errorf("pull request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

// List implements [SyncTransport] with GET /api/blobs.
func (h *httpSyncTransport) List(ctx context.Context) ([]string, error) {
	var list listResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&list).
		Get(blobsPath)
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return list.IDs, nil
}

// Delete implements [SyncTransport] with DELETE /api/blobs/{recordID}. A
// missing remote copy is not an error.
func (h *httpSyncTransport) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return ErrInvalidRecordID
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("recordID", recordID).
		Delete(blobPath)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}

	return mapHTTPError(resp)
}
