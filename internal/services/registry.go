package services

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds the ERP collections by name.
type Registry struct {
	collections *orderedmap.OrderedMap[string, Collection]
}

// NewRegistry registers all ERP collections on top of the given client.
func NewRegistry(client Requester) *Registry {
	registry := &Registry{collections: orderedmap.New[string, Collection]()}
	registry.Register(NewProducts(client))
	registry.Register(NewSuppliers(client))
	registry.Register(NewTrips(client))
	registry.Register(NewInvoices(client))
	registry.Register(NewPurchaseOrders(client))
	return registry
}

func (r *Registry) Register(collection Collection) {
	r.collections.Set(collection.Name(), collection)
}

func (r *Registry) Lookup(name string) (Collection, error) {
	collection, found := r.collections.Get(name)
	if !found {
		return nil, fmt.Errorf("unknown resource %q, expected one of %v", name, r.Names())
	}
	return collection, nil
}

// Names lists the registered collections in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.collections.Len())
	for pair := r.collections.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// CollectionNames lists the names NewRegistry registers.
func CollectionNames() []string {
	return NewRegistry(nil).Names()
}
