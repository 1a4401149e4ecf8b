package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPServerAdapter builds a REST [ServerAdapter] for the server at
// cfg.HTTPAddress. A bare host:port is treated as plain http.
func NewHTTPServerAdapter(cfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
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

func (h *httpServerAdapter) CreateSecret(ctx context.Context, data string) (string, error) {
	var created models.CreateSecretResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.CreateSecretRequest{Data: data}).
		SetResult(&created).
		Post("/api/store")
	if err != nil {
		return "", fmt.Errorf("create secret request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	h.logger.Debug().Str("func", "*httpServerAdapter.CreateSecret").Str("id", created.ID).Msg("secret created")
	return created.ID, nil
}

func (h *httpServerAdapter) ViewSecret(ctx context.Context, id string) (models.TextSecretPayload, error) {
	var payload models.TextSecretPayload

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SecretIDRequest{ID: id}).
		SetResult(&payload).
		Post("/api/view")
	if err != nil {
		return models.TextSecretPayload{}, fmt.Errorf("view secret request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TextSecretPayload{}, err
	}

	return payload, nil
}

func (h *httpServerAdapter) BurnSecret(ctx context.Context, id string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SecretIDRequest{ID: id}).
		Post("/api/burn")
	if err != nil {
		return fmt.Errorf("burn secret request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) Stats(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Post("/api/stats")
	if err != nil {
		return "", fmt.Errorf("stats request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}

func (h *httpServerAdapter) StatsAll(ctx context.Context) (models.SecretStats, error) {
	var stats models.SecretStats

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&stats).
		Get("/api/stats/all")
	if err != nil {
		return models.SecretStats{}, fmt.Errorf("stats request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SecretStats{}, err
	}

	return stats, nil
}
