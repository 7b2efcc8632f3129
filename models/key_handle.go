package models

import "time"

// StoredKeyHandle is one opaque entry of the key store.
type StoredKeyHandle struct {
	Identifier  string    `json:"identifier"`
	OpaqueBytes []byte    `json:"opaque_bytes"`
	UpdatedAt   time.Time `json:"updated_at"`
}
