// internal/domain/catalog/events.go
package catalog

import (
	"github.com/asaskevich/EventBus"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
)

// TopicItemChanged is published whenever a catalog item is created or
// updated. Subscribers receive the reference.Ref of the changed item and
// refresh whatever they denormalized from it.
const TopicItemChanged = "catalog:item_changed"

// PublishItemChanged notifies subscribers that the referenced item's
// display fields may have changed.
func PublishItemChanged(bus EventBus.Bus, ref reference.Ref) {
	bus.Publish(TopicItemChanged, ref)
}

// SubscribeItemChanged registers a handler for catalog item changes.
func SubscribeItemChanged(bus EventBus.Bus, handler func(ref reference.Ref)) error {
	return bus.Subscribe(TopicItemChanged, handler)
}
