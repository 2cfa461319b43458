package devapi

import (
	"sync"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// entityStore keeps the entities of one resource in insertion order.
type entityStore[T any] struct {
	lock        sync.RWMutex
	entities    *orderedmap.OrderedMap[string, T]
	idGenerator models.IDGenerator
	setID       func(*T, string)
}

func newEntityStore[T any](setID func(*T, string)) *entityStore[T] {
	return &entityStore[T]{
		entities:    orderedmap.New[string, T](),
		idGenerator: models.ULIDGenerator{},
		setID:       setID,
	}
}

func (s *entityStore[T]) list() []T {
	s.lock.RLock()
	defer s.lock.RUnlock()
	output := make([]T, 0, s.entities.Len())
	for pair := s.entities.Oldest(); pair != nil; pair = pair.Next() {
		output = append(output, pair.Value)
	}
	return output
}

func (s *entityStore[T]) get(id string) (T, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entity, found := s.entities.Get(id)
	if !found {
		return entity, apierrors.ErrNotFound
	}
	return entity, nil
}

func (s *entityStore[T]) create(entity T) (T, error) {
	id, err := s.idGenerator.ID()
	if err != nil {
		return entity, err
	}
	s.setID(&entity, id)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.entities.Set(id, entity)
	return entity, nil
}

// update replaces an existing entity, the stored ID always wins over the one in the payload.
func (s *entityStore[T]) update(id string, entity T) (T, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, found := s.entities.Get(id); !found {
		return entity, apierrors.ErrNotFound
	}
	s.setID(&entity, id)
	s.entities.Set(id, entity)
	return entity, nil
}

func (s *entityStore[T]) delete(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, present := s.entities.Delete(id); !present {
		return apierrors.ErrNotFound
	}
	return nil
}

func (s *entityStore[T]) exists(id string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, found := s.entities.Get(id)
	return found
}
