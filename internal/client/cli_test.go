package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-vault/internal/app"
	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	handler "github.com/MKhiriev/go-secure-vault/internal/handler/http"
	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/minimizer"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/store"
	"github.com/MKhiriev/go-secure-vault/internal/utils"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/models"
)

const (
	passphrase = "Sword-Fish-7!"
	secretData = "outfit-data-42"
)

var relayToken = config.RelayToken{SignKey: "relay-sign-key", Issuer: "vault-relay", Duration: time.Hour}

// ── Harness ──

// harness runs commands against one in-memory key store, so state
// survives between invocations like it does on disk.
type harness struct {
	keys *keystore.Memory
	cfg  *config.ClientConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		keys: keystore.NewMemory(),
		cfg: &config.ClientConfig{
			Crypto: crypto.Params{
				Algorithm: models.AES256GCMArgon2id,
				KDF:       models.KDFParams{Iterations: 1, MemoryKiB: crypto.MinMemoryKiB, Threads: 1},
			},
			Vault: vault.Policy{FailureCooldown: time.Hour, AuthTimeout: time.Minute},
			Sync:  minimizer.Policy{Name: "outfit", Essential: []string{"title", "profile.size"}},
			Workers: config.ClientWorkers{
				IdleCheckInterval: time.Minute,
			},
		},
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes args with stdin as input and answers fed to passphrase
// prompts in order.
func (h *harness) run(t *testing.T, stdin string, answers []string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand(models.NewAppBuildInfo("1.2.3", "2026-10-14", "abc123"), Options{
		In:       strings.NewReader(stdin),
		Out:      &stdout,
		Err:      &stderr,
		Prompter: NewLinePrompter(strings.NewReader(strings.Join(answers, "\n") + "\n")),
		LoadConfig: func(string) (*config.ClientConfig, error) {
			return h.cfg, nil
		},
		OpenApp: func(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
			return NewApp(ctx, cfg, h.keys, vault.NewKeyStoreAttempts(h.keys), log)
		},
	})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (h *harness) initVault(t *testing.T) {
	t.Helper()
	res := h.run(t, "", []string{passphrase, passphrase}, "init")
	require.NoError(t, res.err)
}

// memBlobs is an in-memory relay blob store.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string]map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: map[string]map[string][]byte{}} }

func (m *memBlobs) PutBlob(_ context.Context, owner, recordID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blobs[owner] == nil {
		m.blobs[owner] = map[string][]byte{}
	}
	m.blobs[owner][recordID] = bytes.Clone(payload)
	return nil
}

func (m *memBlobs) GetBlob(_ context.Context, owner, recordID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.blobs[owner][recordID]
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return bytes.Clone(payload), nil
}

func (m *memBlobs) ListBlobIDs(_ context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.blobs[owner]))
	for id := range m.blobs[owner] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memBlobs) DeleteBlob(_ context.Context, owner, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[owner][recordID]; !ok {
		return store.ErrBlobNotFound
	}
	delete(m.blobs[owner], recordID)
	return nil
}

// withRelay points the harness at a relay built from the real handler.
func (h *harness) withRelay(t *testing.T) *memBlobs {
	t.Helper()

	blobs := newMemBlobs()
	services, err := service.NewServices(blobs, &config.RelayConfig{Version: "test"}, logger.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(handler.NewHandler(services, relayToken, logger.Nop()).Init())
	t.Cleanup(srv.Close)

	token, err := utils.GenerateJWTToken(relayToken.Issuer, "alice", relayToken.Duration, relayToken.SignKey)
	require.NoError(t, err)

	h.cfg.Adapter = config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 5 * time.Second, Token: token}
	return blobs
}

// ── init / status ──

func TestInit_ThenStatus(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", nil, "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "not initialized")

	h.initVault(t)

	res = h.run(t, "", nil, "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "vault initialized")
	assert.Contains(t, res.stdout, "locked")
	assert.Contains(t, res.stdout, "failed attempts: 0")
	assert.Contains(t, res.stdout, "not enrolled")
}

func TestInit_Twice(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "", []string{"other", "other"}, "init")
	require.ErrorIs(t, res.err, vault.ErrAlreadyInitialized)
	assert.Equal(t, app.MsgAlreadyInitialized, ErrorMessage(res.err))
}

func TestInit_PassphraseMismatch(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", []string{passphrase, "Sword-Fish-8!"}, "init")
	require.ErrorIs(t, res.err, ErrPassphraseMismatch)
	assert.Equal(t, ErrPassphraseMismatch.Error(), ErrorMessage(res.err))

	res = h.run(t, "", nil, "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "not initialized")
}

func TestInit_EmptyPassphrase(t *testing.T) {
	res := newHarness(t).run(t, "", []string{"", ""}, "init")
	assert.ErrorIs(t, res.err, ErrEmptyPassphrase)
}

// ── encrypt / decrypt ──

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	enc := h.run(t, secretData, []string{passphrase}, "encrypt")
	require.NoError(t, enc.err)
	assert.NotContains(t, enc.stdout, secretData)

	var record models.EncryptedRecord
	require.NoError(t, json.Unmarshal([]byte(enc.stdout), &record))
	assert.Equal(t, models.AES256GCMArgon2id, record.Algorithm)

	dec := h.run(t, enc.stdout, []string{passphrase}, "decrypt")
	require.NoError(t, dec.err)
	assert.Equal(t, secretData, dec.stdout)
}

func TestEncryptDecrypt_Files(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	sealed := filepath.Join(dir, "record.json")
	opened := filepath.Join(dir, "opened.txt")
	require.NoError(t, os.WriteFile(plain, []byte(secretData), 0o600))

	require.NoError(t, h.run(t, "", []string{passphrase}, "encrypt", "--in", plain, "--out", sealed).err)
	require.NoError(t, h.run(t, "", []string{passphrase}, "decrypt", "--in", sealed, "--out", opened).err)

	got, err := os.ReadFile(opened)
	require.NoError(t, err)
	assert.Equal(t, secretData, string(got))
}

func TestEncrypt_NotInitialized(t *testing.T) {
	res := newHarness(t).run(t, secretData, []string{passphrase}, "encrypt")
	require.ErrorIs(t, res.err, vault.ErrNotInitialized)
	assert.Equal(t, app.MsgNotInitialized, ErrorMessage(res.err))
}

func TestDecrypt_MalformedInput(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "not json", []string{passphrase}, "decrypt")
	require.Error(t, res.err)
	assert.Contains(t, ErrorMessage(res.err), "malformed JSON")
}

func TestUnlock_WrongPassphraseThenRateLimited(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, secretData, []string{"wrong"}, "encrypt")
	require.ErrorIs(t, res.err, vault.ErrAuthenticationFailed)
	assert.Equal(t, app.MsgAccessDenied, ErrorMessage(res.err))

	res = h.run(t, secretData, []string{passphrase}, "encrypt")
	var limited *vault.RateLimitedError
	require.ErrorAs(t, res.err, &limited)
	assert.Contains(t, ErrorMessage(res.err), limited.RetryAfter.Local().Format(time.TimeOnly))

	status := h.run(t, "", nil, "status")
	require.NoError(t, status.err)
	assert.Contains(t, status.stdout, "failed attempts: 1")
	assert.Contains(t, status.stdout, "retry after:")
}

// ── rotate ──

func TestRotate_ReencryptsFiles(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	sealed := filepath.Join(t.TempDir(), "record.json")

	require.NoError(t, h.run(t, secretData, []string{passphrase}, "encrypt", "--out", sealed).err)
	before, err := os.ReadFile(sealed)
	require.NoError(t, err)

	res := h.run(t, "", []string{passphrase, "Blue-Whale-9?", "Blue-Whale-9?"}, "rotate", sealed)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1 record(s) re-encrypted")

	after, err := os.ReadFile(sealed)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	dec := h.run(t, "", []string{"Blue-Whale-9?"}, "decrypt", "--in", sealed)
	require.NoError(t, dec.err)
	assert.Equal(t, secretData, dec.stdout)

	entries, err := os.ReadDir(filepath.Dir(sealed))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestRotate_WrongPassphraseLeavesFiles(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	sealed := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, h.run(t, secretData, []string{passphrase}, "encrypt", "--out", sealed).err)
	before, err := os.ReadFile(sealed)
	require.NoError(t, err)

	res := h.run(t, "", []string{"wrong", "Blue-Whale-9?", "Blue-Whale-9?"}, "rotate", sealed)
	require.ErrorIs(t, res.err, vault.ErrRotationFailed)
	assert.Equal(t, app.MsgRotationFailed, ErrorMessage(res.err))

	after, err := os.ReadFile(sealed)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRotate_StagingFailureKeepsOldKey(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	sealed := filepath.Join(t.TempDir(), longRecordName())

	enc := h.run(t, secretData, []string{passphrase}, "encrypt")
	require.NoError(t, enc.err)
	require.NoError(t, os.WriteFile(sealed, []byte(enc.stdout), 0o600))

	res := h.run(t, "", []string{passphrase, "Blue-Whale-9?", "Blue-Whale-9?"}, "rotate", sealed)
	require.ErrorIs(t, res.err, vault.ErrRotationFailed)
	assert.Equal(t, app.MsgRotationFailed, ErrorMessage(res.err))

	after, err := os.ReadFile(sealed)
	require.NoError(t, err)
	assert.Equal(t, enc.stdout, string(after))

	dec := h.run(t, "", []string{passphrase}, "decrypt", "--in", sealed)
	require.NoError(t, dec.err)
	assert.Equal(t, secretData, dec.stdout)

	dec = h.run(t, "", []string{"Blue-Whale-9?"}, "decrypt", "--in", sealed)
	assert.ErrorIs(t, dec.err, vault.ErrAuthenticationFailed)

	entries, err := os.ReadDir(filepath.Dir(sealed))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRotate_RejectsStdin(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "", nil, "rotate", "-")
	require.Error(t, res.err)
	assert.Contains(t, ErrorMessage(res.err), "not stdin")
}

// ── duress ──

func TestDuress_OpensNothingAndStaysHidden(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "", []string{passphrase, "Dolphin-3#", "Dolphin-3#"}, "duress")
	require.NoError(t, res.err)

	status := h.run(t, "", nil, "status")
	require.NoError(t, status.err)
	assert.NotContains(t, strings.ToLower(status.stdout), "duress")

	enc := h.run(t, secretData, []string{"Dolphin-3#"}, "encrypt")
	require.ErrorIs(t, enc.err, vault.ErrAuthenticationFailed)
	assert.Equal(t, app.MsgAccessDenied, ErrorMessage(enc.err))
	assert.Empty(t, enc.stdout)
}

func TestDuress_MustDifferFromPassphrase(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "", []string{passphrase, passphrase, passphrase}, "duress")
	require.ErrorIs(t, res.err, vault.ErrDuressMatchesPassphrase)
	assert.Equal(t, vault.ErrDuressMatchesPassphrase.Error(), ErrorMessage(res.err))
}

// ── sync ──

func TestSync_PushListPullErase(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	blobs := h.withRelay(t)

	record := `{"id":"outfit-42","fields":{"title":"outfit-data-42","notes":"private","profile":{"size":"M","address":"1 Main St"}}}`
	require.NoError(t, h.run(t, record, []string{passphrase}, "sync", "push").err)

	stored, err := blobs.GetBlob(context.Background(), "alice", "outfit-42")
	require.NoError(t, err)
	assert.NotContains(t, string(stored), "outfit-data-42")
	assert.NotContains(t, string(stored), "Main St")

	list := h.run(t, "", []string{passphrase}, "sync", "list")
	require.NoError(t, list.err)
	assert.Equal(t, "outfit-42\n", list.stdout)

	pull := h.run(t, "", []string{passphrase}, "sync", "pull", "outfit-42")
	require.NoError(t, pull.err)
	var got models.Record
	require.NoError(t, json.Unmarshal([]byte(pull.stdout), &got))
	assert.Equal(t, models.Record{
		ID: "outfit-42",
		Fields: map[string]any{
			"title":   "outfit-data-42",
			"profile": map[string]any{"size": "M"},
		},
	}, got)

	erase := h.run(t, "", []string{passphrase}, "sync", "erase", "outfit-42")
	require.NoError(t, erase.err)
	assert.Contains(t, erase.stdout, "erased outfit-42")

	pull = h.run(t, "", []string{passphrase}, "sync", "pull", "outfit-42")
	require.Error(t, pull.err)
	assert.Equal(t, app.MsgRecordNotFound, ErrorMessage(pull.err))

	all := h.run(t, "", []string{passphrase}, "sync", "pull-all")
	require.NoError(t, all.err)
	assert.JSONEq(t, "[]", all.stdout)
}

func TestSync_PushIDOverride(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	blobs := h.withRelay(t)

	res := h.run(t, `{"fields":{"title":"x"}}`, []string{passphrase}, "sync", "push", "--id", "outfit-7")
	require.NoError(t, res.err)

	ids, err := blobs.ListBlobIDs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"outfit-7"}, ids)
}

func TestSync_Disabled(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)

	res := h.run(t, "", []string{passphrase}, "sync", "list")
	require.ErrorIs(t, res.err, ErrSyncDisabled)
	assert.Equal(t, ErrSyncDisabled.Error(), ErrorMessage(res.err))
}

func TestSync_RelayRejectsToken(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	h.withRelay(t)
	h.cfg.Adapter.Token = "not-a-jwt"

	res := h.run(t, "", []string{passphrase}, "sync", "list")
	require.Error(t, res.err)
	assert.Equal(t, app.MsgRelayUnauthorized, ErrorMessage(res.err))
}

func TestSync_PullArgs(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", nil, "sync", "pull")
	require.Error(t, res.err)
	assert.Contains(t, ErrorMessage(res.err), "accepts 1 arg")
}

// ── misc ──

func TestVersion(t *testing.T) {
	res := newHarness(t).run(t, "", nil, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "Build version: 1.2.3\nBuild date: 2026-10-14\nBuild commit: abc123\n", res.stdout)
}

func TestUnknownFlag(t *testing.T) {
	res := newHarness(t).run(t, "", nil, "status", "--bogus")
	require.Error(t, res.err)
	assert.Contains(t, ErrorMessage(res.err), "unknown flag")
}

func TestErrorMessage_Unexpected(t *testing.T) {
	assert.Equal(t, app.MsgUnexpected, ErrorMessage(assert.AnError))
	assert.Equal(t, "interrupted", ErrorMessage(context.Canceled))
}

func TestSync_PushGeneratesID(t *testing.T) {
	h := newHarness(t)
	h.initVault(t)
	blobs := h.withRelay(t)

	res := h.run(t, `{"fields":{"title":"x"}}`, []string{passphrase}, "sync", "push")
	require.NoError(t, res.err)

	ids, err := blobs.ListBlobIDs(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Contains(t, res.stdout, ids[0])
}
