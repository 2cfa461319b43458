// Package devapi is a development stand-in for the ERP REST API. It issues tokens for the
// configured users and keeps all entities in memory.
package devapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/labstack/echo/v4"
	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/models"
)

const userCtxKey string = "devapiUser"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type Server struct {
	config    *config.DevAPIConfig
	issuer    *tokenIssuer
	scheduler *gocron.Scheduler

	products       *entityStore[models.Product]
	suppliers      *entityStore[models.Supplier]
	trips          *entityStore[models.Trip]
	invoices       *entityStore[models.Invoice]
	purchaseOrders *entityStore[models.PurchaseOrder]
}

type ServerOption func(*Server) error

func WithConfig(devConfig config.DevAPIConfig) ServerOption {
	return func(s *Server) error {
		err := devConfig.Validate()
		if err != nil {
			return err
		}
		s.config = &devConfig
		return nil
	}
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := Server{
		products:       newEntityStore(func(p *models.Product, id string) { p.ID = id }),
		suppliers:      newEntityStore(func(s *models.Supplier, id string) { s.ID = id }),
		trips:          newEntityStore(func(t *models.Trip, id string) { t.ID = id }),
		invoices:       newEntityStore(func(i *models.Invoice, id string) { i.ID = id }),
		purchaseOrders: newEntityStore(func(p *models.PurchaseOrder, id string) { p.ID = id }),
	}
	for _, opt := range options {
		err := opt(&server)
		if err != nil {
			return &Server{}, err
		}
	}
	if server.config == nil {
		return &Server{}, fmt.Errorf("dev API config not provided")
	}
	server.issuer = newTokenIssuer(*server.config)
	return &server, nil
}

// RegisterHandlers mounts the API under /api.
func (s *Server) RegisterHandlers(server *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e := server.Group("/api")
	e.Use(commonMiddlewares...)

	e.POST("/auth/login", s.PostLogin)
	e.POST("/auth/refresh", s.PostRefresh)
	e.POST("/auth/logout", s.PostLogout)

	s.productResource().register(e, s.RequireAccessToken)
	s.supplierResource().register(e, s.RequireAccessToken)
	s.tripResource().register(e, s.RequireAccessToken)
	s.invoiceResource().register(e, s.RequireAccessToken)
	s.purchaseOrderResource().register(e, s.RequireAccessToken)
}

// StartPurge schedules the periodic removal of expired refresh tokens.
func (s *Server) StartPurge() error {
	scheduler := gocron.NewScheduler(time.UTC)
	job, err := scheduler.Every(s.config.PurgeInterval).Do(s.issuer.purgeExpired)
	if err != nil {
		slog.Error("Starting gocron job failed", "error", err)
		return err
	}
	scheduler.StartAsync()
	s.scheduler = scheduler
	slog.Info("DEV API", "message", "refresh token purge scheduled", "interval", s.config.PurgeInterval, "job", job.Tags())
	return nil
}

func (s *Server) StopPurge() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Server) PostLogin(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Username == "" || body.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	accessToken, refreshToken, err := s.issuer.login(body.Username, body.Password)
	if err == errInvalidCredentials {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return err
	}
	requestLog(c).Info("DEV API", "message", "user logged in", "user", body.Username)
	return c.JSON(http.StatusOK, loginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (s *Server) PostRefresh(c echo.Context) error {
	var body refreshRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	accessToken, err := s.issuer.refresh(body.Token)
	if err == errInvalidRefreshToken {
		requestLog(c).Debug("DEV API", "message", "rejected refresh token")
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{AccessToken: accessToken})
}

func (s *Server) PostLogout(c echo.Context) error {
	var body refreshRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	s.issuer.revoke(body.Token)
	return c.NoContent(http.StatusNoContent)
}

// RequireAccessToken rejects requests without a valid bearer access token.
func (s *Server) RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !found || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		user, err := s.issuer.verify(token)
		if err != nil {
			requestLog(c).Debug("DEV API", "message", "rejected access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired access token")
		}
		c.Set(userCtxKey, user)
		return next(c)
	}
}

func (s *Server) productResource() *resource[models.Product] {
	return &resource[models.Product]{
		name:     "products",
		store:    s.products,
		listBody: func(items []models.Product) any { return items },
		prepare: func(p *models.Product) error {
			if p.Name == "" {
				return fmt.Errorf("a product needs a name")
			}
			if p.Price < 0 || p.Stock < 0 {
				return fmt.Errorf("price and stock cannot be negative")
			}
			if p.SupplierID != "" && !s.suppliers.exists(p.SupplierID) {
				return fmt.Errorf("supplier %q does not exist", p.SupplierID)
			}
			return nil
		},
	}
}

func (s *Server) supplierResource() *resource[models.Supplier] {
	return &resource[models.Supplier]{
		name:       "suppliers",
		store:      s.suppliers,
		listBody:   func(items []models.Supplier) any { return dataEnvelope{Data: items} },
		wrapEntity: true,
		prepare: func(sup *models.Supplier) error {
			if sup.Name == "" {
				return fmt.Errorf("a supplier needs a name")
			}
			return nil
		},
	}
}

func (s *Server) tripResource() *resource[models.Trip] {
	return &resource[models.Trip]{
		name:  "trips",
		store: s.trips,
		listBody: func(items []models.Trip) any {
			return struct {
				Items []models.Trip `json:"items"`
				Total int           `json:"total"`
			}{Items: items, Total: len(items)}
		},
		prepare: func(t *models.Trip) error {
			if t.Salesperson == "" || t.Destination == "" {
				return fmt.Errorf("a trip needs a salesperson and a destination")
			}
			if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
				return fmt.Errorf("a trip cannot end before it starts")
			}
			if t.Status == "" {
				t.Status = "planned"
			}
			return nil
		},
	}
}

func (s *Server) invoiceResource() *resource[models.Invoice] {
	return &resource[models.Invoice]{
		name:  "invoices",
		store: s.invoices,
		listBody: func(items []models.Invoice) any {
			return struct {
				Results []models.Invoice `json:"results"`
			}{Results: items}
		},
		prepare: func(i *models.Invoice) error {
			if i.Customer == "" {
				return fmt.Errorf("an invoice needs a customer")
			}
			if i.IssuedAt.IsZero() {
				i.IssuedAt = time.Now().UTC()
			}
			if i.Status == "" {
				i.Status = "draft"
			}
			i.Total = models.LinesTotal(i.Lines)
			return nil
		},
	}
}

func (s *Server) purchaseOrderResource() *resource[models.PurchaseOrder] {
	return &resource[models.PurchaseOrder]{
		name:       "purchase-orders",
		store:      s.purchaseOrders,
		listBody:   func(items []models.PurchaseOrder) any { return dataEnvelope{Data: items} },
		wrapEntity: true,
		prepare: func(p *models.PurchaseOrder) error {
			if !s.suppliers.exists(p.SupplierID) {
				return fmt.Errorf("supplier %q does not exist", p.SupplierID)
			}
			if p.OrderedAt.IsZero() {
				p.OrderedAt = time.Now().UTC()
			}
			if p.Status == "" {
				p.Status = "ordered"
			}
			p.Total = models.LinesTotal(p.Lines)
			return nil
		},
	}
}
