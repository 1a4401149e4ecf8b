// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the secret HTTP API.
//
// [NewHTTPServerAdapter] talks to a running server over REST. Non-2xx
// responses are mapped by mapHTTPError onto the sentinel errors of this
// package so callers can match them with [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-secret-keeper/models"
)

// ServerAdapter is the transport-agnostic view of the secret API.
type ServerAdapter interface {
	// CreateSecret stores data as a one-time text secret and returns its id.
	CreateSecret(ctx context.Context, data string) (string, error)

	// ViewSecret reads and consumes the secret. A secret that does not
	// exist or was already read yields [ErrNotFound].
	ViewSecret(ctx context.Context, id string) (models.TextSecretPayload, error)

	// BurnSecret deletes the secret without reading it.
	BurnSecret(ctx context.Context, id string) error

	// Stats returns the number of secrets created so far as a decimal
	// string.
	Stats(ctx context.Context) (string, error)

	// StatsAll returns all counters of text secrets.
	StatsAll(ctx context.Context) (models.SecretStats, error)
}
