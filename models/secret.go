// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SecretType names the kind of a stored secret. It scopes both the secret
// keys and the stats counters.
type SecretType string

const (
	// SecretTypeText is the only kind currently produced.
	SecretTypeText SecretType = "text"
)

// TextSecretPayload is the stored value of a text secret and the body
// returned to the single reader that consumes it.
type TextSecretPayload struct {
	Type SecretType `json:"type"`
	Data string     `json:"data"`
}

// NewTextSecret wraps data into a text payload.
func NewTextSecret(data string) TextSecretPayload {
	return TextSecretPayload{Type: SecretTypeText, Data: data}
}

// SecretStats holds the monotonic counters of one secret type.
type SecretStats struct {
	Created uint64 `json:"created"`
	Read    uint64 `json:"read"`
	Deleted uint64 `json:"deleted"`
}
