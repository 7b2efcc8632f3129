// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"runtime"

	"github.com/MKhiriev/go-secure-vault/models"
)

// Key is symmetric key material together with the public parameters it was
// derived with. A Key must be zeroed with [Key.Zero] once it is no longer
// needed.
type Key struct {
	material []byte
	salt     []byte
	params   models.KDFParams
}

// NewKey copies material and salt into a new [Key]. The caller keeps
// ownership of (and should zero) its own copy of material.
func NewKey(material, salt []byte, params models.KDFParams) *Key {
	return &Key{
		material: append([]byte(nil), material...),
		salt:     append([]byte(nil), salt...),
		params:   params,
	}
}

// Bytes returns the key material itself, not a copy. It is valid until
// Zero is called and must not be retained or logged.
func (k *Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.material
}

// Salt returns a copy of the salt the key was derived with.
func (k *Key) Salt() []byte {
	if k == nil {
		return nil
	}
	return append([]byte(nil), k.salt...)
}

// Params returns the KDF parameters the key was derived with.
func (k *Key) Params() models.KDFParams {
	if k == nil {
		return models.KDFParams{}
	}
	return k.params
}

// Clone returns an independent copy that must be zeroed separately.
func (k *Key) Clone() *Key {
	if k == nil {
		return nil
	}
	return NewKey(k.material, k.salt, k.params)
}

// Zero overwrites the key material. The key is unusable afterwards.
// Safe on a nil or already zeroed key.
func (k *Key) Zero() {
	if k == nil {
		return
	}
	Zero(k.material)
	k.material = nil
}

// IsZeroed reports whether Zero has been called.
func (k *Key) IsZeroed() bool {
	return k == nil || k.material == nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
