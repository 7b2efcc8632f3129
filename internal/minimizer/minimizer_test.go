package minimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/mock"
	"github.com/MKhiriev/go-secure-vault/models"
)

func sampleRecord() models.Record {
	return models.Record{
		ID: "outfit-1",
		Fields: map[string]any{
			"title": "Winter coat",
			"notes": "bought at the flea market",
			"profile": map[string]any{
				"size":     "M",
				"location": "home address",
			},
			"tags": []any{"warm", "wool"},
		},
	}
}

var essentials = Policy{Name: "outfit", Essential: []string{"title", "profile.size", "tags", "missing", "title.deeper"}}

func TestMinimize_KeepsOnlyEssentialFields(t *testing.T) {
	got := Minimize(sampleRecord(), essentials)

	assert.Equal(t, models.Record{
		ID: "outfit-1",
		Fields: map[string]any{
			"title":   "Winter coat",
			"profile": map[string]any{"size": "M"},
			"tags":    []any{"warm", "wool"},
		},
	}, got)
}

func TestMinimize_Idempotent(t *testing.T) {
	once := Minimize(sampleRecord(), essentials)
	twice := Minimize(once, essentials)

	assert.Equal(t, once, twice)
}

func TestMinimize_DoesNotAliasInput(t *testing.T) {
	in := sampleRecord()
	out := Minimize(in, Policy{Essential: []string{"profile", "tags"}})

	out.Fields["profile"].(map[string]any)["size"] = "XL"
	out.Fields["tags"].([]any)[0] = "cold"

	assert.Equal(t, "M", in.Fields["profile"].(map[string]any)["size"])
	assert.Equal(t, "warm", in.Fields["tags"].([]any)[0])
	assert.Contains(t, in.Fields, "notes")
}

func TestMinimize_ParentAndChildPaths(t *testing.T) {
	a := Minimize(sampleRecord(), Policy{Essential: []string{"profile", "profile.size"}})
	b := Minimize(sampleRecord(), Policy{Essential: []string{"profile.size", "profile"}})

	assert.Equal(t, sampleRecord().Fields["profile"], a.Fields["profile"])
	assert.Equal(t, a, b)
}

func TestMinimize_EmptyPolicyAndRecord(t *testing.T) {
	got := Minimize(sampleRecord(), Policy{})
	assert.Equal(t, "outfit-1", got.ID)
	assert.Empty(t, got.Fields)

	got = Minimize(models.Record{ID: "x"}, essentials)
	assert.Empty(t, got.Fields)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, essentials.Validate())
	assert.ErrorIs(t, Policy{Essential: []string{""}}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{Essential: []string{"a..b"}}.Validate(), ErrInvalidPolicy)

	_, err := New(Policy{Essential: []string{".a"}}, keystore.NewMemory(), logger.Nop())
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestMinimizer_EraseAll(t *testing.T) {
	ctx := context.Background()
	keys := keystore.NewMemory()
	require.NoError(t, keys.Put(ctx, keystore.RecordKeyID("outfit-1"), []byte("k")))
	require.NoError(t, keys.Put(ctx, keystore.RecordKeyID("outfit-2"), []byte("k")))

	m, err := New(essentials, keys, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, m.EraseAll(ctx, "outfit-1"))
	require.NoError(t, m.EraseAll(ctx, "outfit-1"))

	_, err = keys.Get(ctx, keystore.RecordKeyID("outfit-1"))
	assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
	_, err = keys.Get(ctx, keystore.RecordKeyID("outfit-2"))
	assert.NoError(t, err)
}

func TestMinimizer_EraseAllStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mock.NewMockKeyStore(ctrl)
	keys.EXPECT().Delete(gomock.Any(), keystore.RecordKeyID("r")).Return(errors.New("locked database"))

	m, err := New(essentials, keys, logger.Nop())
	require.NoError(t, err)

	err = m.EraseAll(context.Background(), "r")
	assert.ErrorContains(t, err, "locked database")
}
