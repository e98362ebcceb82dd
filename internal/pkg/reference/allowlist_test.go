// internal/pkg/reference/allowlist_test.go
package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// fakeKind backs allow-list tests without a database.
type fakeKind struct {
	name  string
	items map[uint]Display
}

func (k *fakeKind) Name() string { return k.name }

func (k *fakeKind) Exists(_ *gorm.DB, id uint) (bool, error) {
	_, ok := k.items[id]
	return ok, nil
}

func (k *fakeKind) Display(_ *gorm.DB, id uint) (Display, error) {
	return k.items[id], nil
}

func newTestRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(&fakeKind{
		name: "medicine",
		items: map[uint]Display{
			1: {Name: "Arnica 30C", Image: "arnica.jpg", AbsoluteURL: "/medicines/arnica-30c"},
		},
	})
	registry.Register(&fakeKind{
		name:  "treatment",
		items: map[uint]Display{},
	})
	return registry
}

func TestNewAllowListRejectsUnknownKind(t *testing.T) {
	registry := newTestRegistry()

	_, err := NewAllowList(registry, []string{"medicine", "gadget"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAllowListTypes(t *testing.T) {
	registry := newTestRegistry()

	allowList, err := NewAllowList(registry, []string{"treatment", "medicine"})
	require.NoError(t, err)

	assert.Equal(t, []string{"medicine", "treatment"}, allowList.Types())
	assert.True(t, allowList.Allowed("medicine"))
	assert.False(t, allowList.Allowed("gadget"))
}

func TestAllowListReload(t *testing.T) {
	registry := newTestRegistry()

	allowList, err := NewAllowList(registry, []string{"medicine", "treatment"})
	require.NoError(t, err)

	require.NoError(t, allowList.Reload([]string{"medicine"}))
	assert.False(t, allowList.Allowed("treatment"))
	assert.True(t, allowList.Allowed("medicine"))

	// A failed reload keeps the previous set.
	require.Error(t, allowList.Reload([]string{"gadget"}))
	assert.True(t, allowList.Allowed("medicine"))
}

func TestResolve(t *testing.T) {
	registry := newTestRegistry()
	allowList, err := NewAllowList(registry, []string{"medicine"})
	require.NoError(t, err)

	display, err := allowList.Resolve(nil, Ref{ItemType: "medicine", ItemID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Arnica 30C", display.Name)
	assert.Equal(t, "arnica.jpg", display.Image)
	assert.Equal(t, "/medicines/arnica-30c", display.AbsoluteURL)
}

func TestResolveMissingItem(t *testing.T) {
	registry := newTestRegistry()
	allowList, err := NewAllowList(registry, []string{"medicine"})
	require.NoError(t, err)

	_, err = allowList.Resolve(nil, Ref{ItemType: "medicine", ItemID: 99})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestResolveDisallowedType(t *testing.T) {
	registry := newTestRegistry()
	allowList, err := NewAllowList(registry, []string{"medicine"})
	require.NoError(t, err)

	// Registered but not allowed resolves the same as unknown.
	_, err = allowList.Resolve(nil, Ref{ItemType: "treatment", ItemID: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestValidate(t *testing.T) {
	registry := newTestRegistry()
	allowList, err := NewAllowList(registry, []string{"medicine"})
	require.NoError(t, err)

	assert.NoError(t, allowList.Validate(nil, Ref{ItemType: "medicine", ItemID: 1}))
	assert.Error(t, allowList.Validate(nil, Ref{ItemType: "medicine", ItemID: 42}))
	assert.Error(t, allowList.Validate(nil, Ref{ItemType: "treatment", ItemID: 1}))
}
