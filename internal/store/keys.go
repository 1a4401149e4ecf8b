package store

import (
	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// Key families. Every persisted key starts with one of these segments.
const (
	secretsSegment     = "secrets"
	statsSegment       = "stats"
	userSegment        = "user"
	userByEmailSegment = "user_by_email"
	userAddressSegment = "user_address"
)

// Stats counter names.
const (
	metricCreated = "created"
	metricRead    = "read"
	metricDeleted = "deleted"
)

// secretKey is secrets/<kind>/<id>.
func secretKey(kind models.SecretType, id string) kv.Key {
	return kv.NewKeyBuilder().
		WithString(secretsSegment).
		WithString(string(kind)).
		WithString(id).
		Build()
}

// statKey is stats/<kind>/<metric>.
func statKey(kind models.SecretType, metric string) kv.Key {
	return kv.NewKeyBuilder().
		WithString(statsSegment).
		WithString(string(kind)).
		WithString(metric).
		Build()
}

func userKey(id string) kv.Key {
	return kv.NewKey(kv.String(userSegment), kv.String(id))
}

func userByEmailKey(email string) kv.Key {
	return kv.NewKey(kv.String(userByEmailSegment), kv.String(email))
}

func userAddressKey(id string) kv.Key {
	return kv.NewKey(kv.String(userAddressSegment), kv.String(id))
}

// usersPrefix selects every user/<id> record.
func usersPrefix() kv.Key {
	return kv.NewKey(kv.String(userSegment))
}
