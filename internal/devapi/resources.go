package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/erp-client/internal/apierrors"
)

// resource serves CRUD routes for one entity type. listBody shapes the list response and
// wrapEntity decides whether single entities are returned inside a "data" envelope.
type resource[T any] struct {
	name       string
	store      *entityStore[T]
	listBody   func([]T) any
	wrapEntity bool
	prepare    func(*T) error
}

type dataEnvelope struct {
	Data any `json:"data"`
}

func (r *resource[T]) register(group *echo.Group, middlewares ...echo.MiddlewareFunc) {
	group.GET("/"+r.name, r.list, middlewares...)
	group.POST("/"+r.name, r.create, middlewares...)
	group.GET("/"+r.name+"/:id", r.get, middlewares...)
	group.PUT("/"+r.name+"/:id", r.update, middlewares...)
	group.PATCH("/"+r.name+"/:id", r.patch, middlewares...)
	group.DELETE("/"+r.name+"/:id", r.delete, middlewares...)
}

func (r *resource[T]) entityBody(entity T) any {
	if r.wrapEntity {
		return dataEnvelope{Data: entity}
	}
	return entity
}

func (r *resource[T]) list(c echo.Context) error {
	return c.JSON(http.StatusOK, r.listBody(r.store.list()))
}

func (r *resource[T]) get(c echo.Context) error {
	entity, err := r.store.get(c.Param("id"))
	if err != nil {
		return r.httpError(err, c.Param("id"))
	}
	return c.JSON(http.StatusOK, r.entityBody(entity))
}

func (r *resource[T]) create(c echo.Context) error {
	var entity T
	if err := c.Bind(&entity); err != nil {
		return err
	}
	if err := r.prepare(&entity); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	created, err := r.store.create(entity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r.entityBody(created))
}

func (r *resource[T]) update(c echo.Context) error {
	var entity T
	if err := c.Bind(&entity); err != nil {
		return err
	}
	return r.save(c, entity)
}

// patch applies the fields present in the body on top of the stored entity.
func (r *resource[T]) patch(c echo.Context) error {
	entity, err := r.store.get(c.Param("id"))
	if err != nil {
		return r.httpError(err, c.Param("id"))
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s payload: %s", r.name, err))
	}
	return r.save(c, entity)
}

func (r *resource[T]) save(c echo.Context, entity T) error {
	if err := r.prepare(&entity); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	updated, err := r.store.update(c.Param("id"), entity)
	if err != nil {
		return r.httpError(err, c.Param("id"))
	}
	return c.JSON(http.StatusOK, r.entityBody(updated))
}

func (r *resource[T]) delete(c echo.Context) error {
	if err := r.store.delete(c.Param("id")); err != nil {
		return r.httpError(err, c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *resource[T]) httpError(err error, id string) error {
	if errors.Is(err, apierrors.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s %q not found", r.name, id))
	}
	return err
}
