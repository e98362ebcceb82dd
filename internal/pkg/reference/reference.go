// internal/pkg/reference/reference.go
package reference

import (
	"sync"

	"gorm.io/gorm"
)

// Ref is a polymorphic reference to a catalog item.
type Ref struct {
	ItemType string `json:"item_type"`
	ItemID   uint   `json:"item_id"`
}

// Display holds the fields a referencing record denormalizes from its item.
type Display struct {
	Name        string
	Image       string
	AbsoluteURL string
}

// Kind is the minimal capability a catalog item type must expose to be
// referenced polymorphically.
type Kind interface {
	Name() string
	Exists(db *gorm.DB, id uint) (bool, error)
	Display(db *gorm.DB, id uint) (Display, error)
}

// Registry is the closed set of kinds known to the application. Kinds are
// registered once at startup; consumers restrict the set further through
// their own AllowList.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry creates an empty kind registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Kind),
	}
}

// Register adds a kind to the registry.
func (r *Registry) Register(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind.Name()] = kind
}

// Kind returns the registered kind with the given name.
func (r *Registry) Kind(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[name]
	return kind, ok
}

// Names returns the names of all registered kinds.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	return names
}
