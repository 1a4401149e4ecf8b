package models

// CreateSecretRequest is the body of POST /api/store.
type CreateSecretRequest struct {
	Data string `json:"data"`
}

// CreateSecretResponse carries the id of the stored secret.
type CreateSecretResponse struct {
	ID string `json:"id"`
}

// SecretIDRequest is the body of the endpoints that address a secret by id
// (view and burn).
type SecretIDRequest struct {
	ID string `json:"id"`
}
