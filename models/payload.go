package models

// ZeroKnowledgePayload is what leaves the device for the remote store.
//
// KeyMaterial holds only the public parameters (salt, KDF work factor,
// algorithm id) needed by the holder of the sync secret to re-derive the
// key. It never holds key bytes.
type ZeroKnowledgePayload struct {
	EncryptedData []byte `json:"encrypted_data"`
	KeyMaterial   []byte `json:"key_material"`
	Nonce         []byte `json:"nonce"`
}

// KeyMaterial is the decoded form of ZeroKnowledgePayload.KeyMaterial.
type KeyMaterial struct {
	Version   int         `json:"v"`
	Algorithm AlgorithmID `json:"alg"`
	KDF       string      `json:"kdf"`
	Salt      []byte      `json:"salt"`
	Params    KDFParams   `json:"params"`
}
