package devapi

import (
	"testing"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityStore(t *testing.T) {
	store := newEntityStore(func(s *models.Supplier, id string) { s.ID = id })

	first, err := store.create(models.Supplier{ID: "ignored", Name: "Acme"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", first.ID)
	assert.Len(t, first.ID, 26)
	second, err := store.create(models.Supplier{Name: "Globex"})
	require.NoError(t, err)
	third, err := store.create(models.Supplier{Name: "Initech"})
	require.NoError(t, err)

	names := func() []string {
		output := []string{}
		for _, s := range store.list() {
			output = append(output, s.Name)
		}
		return output
	}
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, names())

	updated, err := store.update(second.ID, models.Supplier{ID: "other", Name: "Globex Corp"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, []string{"Acme", "Globex Corp", "Initech"}, names())

	require.NoError(t, store.delete(first.ID))
	assert.Equal(t, []string{"Globex Corp", "Initech"}, names())
	assert.True(t, store.exists(third.ID))
	assert.False(t, store.exists(first.ID))

	_, err = store.get(first.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
	_, err = store.update(first.ID, models.Supplier{})
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
	assert.ErrorIs(t, store.delete(first.ID), apierrors.ErrNotFound)
}
