// internal/pkg/reference/allowlist.go
package reference

import (
	"sort"
	"sync"

	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// AllowList restricts a registry to the item types one consumer may
// reference. It is built explicitly from configuration at startup and
// swapped as a whole on reload; there is no ambient memoization.
type AllowList struct {
	mu       sync.RWMutex
	registry *Registry
	allowed  map[string]struct{}
}

// NewAllowList builds an allow-list over the registry. Every listed type
// must name a registered kind.
func NewAllowList(registry *Registry, itemTypes []string) (*AllowList, error) {
	a := &AllowList{registry: registry}
	if err := a.Reload(itemTypes); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload replaces the allowed set. Used by the admin reload endpoint after
// a configuration change.
func (a *AllowList) Reload(itemTypes []string) error {
	allowed := make(map[string]struct{}, len(itemTypes))
	for _, itemType := range itemTypes {
		if _, ok := a.registry.Kind(itemType); !ok {
			return apperror.Newf(apperror.KindValidation, "unknown catalog item type %q", itemType)
		}
		allowed[itemType] = struct{}{}
	}

	a.mu.Lock()
	a.allowed = allowed
	a.mu.Unlock()
	return nil
}

// Allowed reports whether the item type is on the allow-list.
func (a *AllowList) Allowed(itemType string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.allowed[itemType]
	return ok
}

// Types returns the allowed item types, sorted.
func (a *AllowList) Types() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	types := make([]string, 0, len(a.allowed))
	for itemType := range a.allowed {
		types = append(types, itemType)
	}
	sort.Strings(types)
	return types
}

// Resolve validates a reference against the allow-list and returns the
// referenced item's display fields. A disallowed type or a missing item
// both resolve to a not-found error.
func (a *AllowList) Resolve(db *gorm.DB, ref Ref) (Display, error) {
	kind, err := a.kindFor(ref)
	if err != nil {
		return Display{}, err
	}

	exists, err := kind.Exists(db, ref.ItemID)
	if err != nil {
		return Display{}, err
	}
	if !exists {
		return Display{}, apperror.Newf(apperror.KindNotFound,
			"%s with id %d does not exist", ref.ItemType, ref.ItemID)
	}

	return kind.Display(db, ref.ItemID)
}

// Validate checks that the reference points at an existing, allow-listed
// item without loading its display fields.
func (a *AllowList) Validate(db *gorm.DB, ref Ref) error {
	kind, err := a.kindFor(ref)
	if err != nil {
		return err
	}

	exists, err := kind.Exists(db, ref.ItemID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.Newf(apperror.KindNotFound,
			"%s with id %d does not exist", ref.ItemType, ref.ItemID)
	}
	return nil
}

func (a *AllowList) kindFor(ref Ref) (Kind, error) {
	if !a.Allowed(ref.ItemType) {
		return nil, apperror.Newf(apperror.KindNotFound,
			"item type %q is not allowed", ref.ItemType)
	}
	kind, ok := a.registry.Kind(ref.ItemType)
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound,
			"item type %q is not registered", ref.ItemType)
	}
	return kind, nil
}
