// Package services exposes the ERP resources on top of the API client. Services work with
// paths relative to the client base URL and normalize the shapes of the API responses.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ledgerline/erp-client/internal/apiclient"
	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
)

// Requester is the part of the API client the services use.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Put(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Delete(ctx context.Context, path string) (*apiclient.Response, error)
}

// Collection is a resource without its entity type, used where resources are picked by name.
type Collection interface {
	Name() string
	ListAny(ctx context.Context, query url.Values) (any, error)
	GetAny(ctx context.Context, id string) (any, error)
	CreateJSON(ctx context.Context, raw []byte) (any, error)
	UpdateJSON(ctx context.Context, id string, raw []byte) (any, error)
	Delete(ctx context.Context, id string) error
}

// Resource gives CRUD access to one collection of the ERP API.
type Resource[T any] struct {
	name   string
	path   string
	client Requester
}

func NewResource[T any](client Requester, name, path string) *Resource[T] {
	return &Resource[T]{name: name, path: path, client: client}
}

func NewProducts(client Requester) *Resource[models.Product] {
	return NewResource[models.Product](client, "products", "/products")
}

func NewSuppliers(client Requester) *Resource[models.Supplier] {
	return NewResource[models.Supplier](client, "suppliers", "/suppliers")
}

func NewTrips(client Requester) *Resource[models.Trip] {
	return NewResource[models.Trip](client, "trips", "/trips")
}

func NewInvoices(client Requester) *Resource[models.Invoice] {
	return NewResource[models.Invoice](client, "invoices", "/invoices")
}

func NewPurchaseOrders(client Requester) *Resource[models.PurchaseOrder] {
	return NewResource[models.PurchaseOrder](client, "purchase-orders", "/purchase-orders")
}

func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	resp, err := r.client.Get(ctx, r.path, query)
	if err != nil {
		return nil, r.wrap(err, "")
	}
	return decodeList[T](resp.Body)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	resp, err := r.client.Get(ctx, r.entityPath(id), nil)
	if err != nil {
		var empty T
		return empty, r.wrap(err, id)
	}
	return decodeEntity[T](resp.Body)
}

func (r *Resource[T]) Create(ctx context.Context, entity T) (T, error) {
	resp, err := r.client.Post(ctx, r.path, entity)
	if err != nil {
		var empty T
		return empty, r.wrap(err, "")
	}
	return decodeEntity[T](resp.Body)
}

// Update replaces the entity with the given ID.
func (r *Resource[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	resp, err := r.client.Put(ctx, r.entityPath(id), entity)
	if err != nil {
		var empty T
		return empty, r.wrap(err, id)
	}
	return decodeEntity[T](resp.Body)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Delete(ctx, r.entityPath(id))
	return r.wrap(err, id)
}

func (r *Resource[T]) ListAny(ctx context.Context, query url.Values) (any, error) {
	return r.List(ctx, query)
}

func (r *Resource[T]) GetAny(ctx context.Context, id string) (any, error) {
	return r.Get(ctx, id)
}

func (r *Resource[T]) CreateJSON(ctx context.Context, raw []byte) (any, error) {
	var entity T
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", r.name, err)
	}
	return r.Create(ctx, entity)
}

func (r *Resource[T]) UpdateJSON(ctx context.Context, id string, raw []byte) (any, error) {
	var entity T
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", r.name, err)
	}
	return r.Update(ctx, id, entity)
}

func (r *Resource[T]) entityPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T]) wrap(err error, id string) error {
	if err == nil {
		return nil
	}
	var statusErr *apierrors.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		if id == "" {
			return fmt.Errorf("%s: %w: %w", r.name, apierrors.ErrNotFound, err)
		}
		return fmt.Errorf("%s %q: %w: %w", r.name, id, apierrors.ErrNotFound, err)
	}
	return err
}
