package zksync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/models"
)

const (
	// WireVersion is the envelope and key material format produced by this package.
	WireVersion = 1
	// KDFArgon2id is the only KDF name accepted in key material.
	KDFArgon2id = "argon2id"
)

// envelope is the JSON wire form of a payload. Key material is embedded as
// a JSON object so the envelope stays self-describing.
type envelope struct {
	Version       int             `json:"v"`
	EncryptedData []byte          `json:"data"`
	Nonce         []byte          `json:"nonce"`
	KeyMaterial   json.RawMessage `json:"key_material"`
}

type versionProbe struct {
	Version int `json:"v"`
}

// EncodePayload serializes p for the sync transport.
func EncodePayload(p models.ZeroKnowledgePayload) ([]byte, error) {
	if !json.Valid(p.KeyMaterial) {
		return nil, invalidPayload(errors.New("key material is not a JSON document"))
	}

	data, err := json.Marshal(envelope{
		Version:       WireVersion,
		EncryptedData: p.EncryptedData,
		Nonce:         p.Nonce,
		KeyMaterial:   p.KeyMaterial,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses bytes produced by EncodePayload. It checks structure
// only: the version, a nonce of the AEAD size, non-empty ciphertext and
// decodable key material.
func DecodePayload(data []byte) (models.ZeroKnowledgePayload, error) {
	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return models.ZeroKnowledgePayload{}, invalidPayload(err)
	}
	if probe.Version != WireVersion {
		return models.ZeroKnowledgePayload{}, invalidPayload(fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.Version))
	}

	var env envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return models.ZeroKnowledgePayload{}, invalidPayload(err)
	}

	p := models.ZeroKnowledgePayload{
		EncryptedData: env.EncryptedData,
		Nonce:         env.Nonce,
		KeyMaterial:   []byte(env.KeyMaterial),
	}
	if err := validatePayload(p); err != nil {
		return models.ZeroKnowledgePayload{}, err
	}
	return p, nil
}

// EncodeKeyMaterial serializes the public derivation parameters.
func EncodeKeyMaterial(km models.KeyMaterial) ([]byte, error) {
	km.Version = WireVersion
	if err := validateKeyMaterial(km); err != nil {
		return nil, err
	}

	data, err := json.Marshal(km)
	if err != nil {
		return nil, fmt.Errorf("encode key material: %w", err)
	}
	return data, nil
}

// DecodeKeyMaterial parses key material. Unknown versions, unknown fields,
// unknown algorithms and unusable KDF parameters are rejected.
func DecodeKeyMaterial(data []byte) (models.KeyMaterial, error) {
	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return models.KeyMaterial{}, invalidPayload(err)
	}
	if probe.Version != WireVersion {
		return models.KeyMaterial{}, invalidPayload(fmt.Errorf("%w: key material v%d", ErrUnsupportedVersion, probe.Version))
	}

	var km models.KeyMaterial
	if err := strictUnmarshal(data, &km); err != nil {
		return models.KeyMaterial{}, invalidPayload(err)
	}
	if err := validateKeyMaterial(km); err != nil {
		return models.KeyMaterial{}, err
	}
	return km, nil
}

// ValidatePayload checks that p is structurally sound without decrypting it.
// The relay uses it to refuse garbage while staying blind.
func ValidatePayload(p models.ZeroKnowledgePayload) error {
	return validatePayload(p)
}

func validatePayload(p models.ZeroKnowledgePayload) error {
	if len(p.EncryptedData) == 0 {
		return invalidPayload(errors.New("empty ciphertext"))
	}
	if len(p.Nonce) != crypto.NonceSize {
		return invalidPayload(fmt.Errorf("nonce must be %d bytes", crypto.NonceSize))
	}
	if _, err := DecodeKeyMaterial(p.KeyMaterial); err != nil {
		return err
	}
	return nil
}

func validateKeyMaterial(km models.KeyMaterial) error {
	switch {
	case km.KDF != KDFArgon2id:
		return invalidPayload(fmt.Errorf("unsupported kdf %q", km.KDF))
	case km.Algorithm != models.AES256GCMArgon2id && km.Algorithm != models.ChaCha20Poly1305Argon2id:
		return invalidPayload(fmt.Errorf("unsupported algorithm %d", km.Algorithm))
	case len(km.Salt) != crypto.SaltSize:
		return invalidPayload(fmt.Errorf("salt must be %d bytes", crypto.SaltSize))
	case km.Params.Iterations < crypto.MinIterations || km.Params.Iterations > crypto.MaxIterations,
		km.Params.MemoryKiB < crypto.MinMemoryKiB || km.Params.MemoryKiB > crypto.MaxMemoryKiB,
		km.Params.Threads < 1:
		return invalidPayload(errors.New("kdf parameters out of range"))
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
