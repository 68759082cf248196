package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sneakyfree/sizzle/pkg/apperrors"
	"github.com/sneakyfree/sizzle/pkg/balance"
	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/healthz"
	applog "github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/registry"
	"github.com/sneakyfree/sizzle/pkg/selector"
	"github.com/sneakyfree/sizzle/pkg/session"
	"github.com/sneakyfree/sizzle/pkg/tiers"
)

// Server is the HTTP surface over the broker core. Auth lives in front of
// it; the caller identity arrives as the X-User-Id header.
type Server struct {
	opts     *Options
	manager  *session.Manager
	selector *selector.Selector
	registry *registry.Registry
	balances balance.Store
}

// New ...
func New(opts *Options, manager *session.Manager, sel *selector.Selector,
	reg *registry.Registry, balances balance.Store) *Server {
	return &Server{
		opts:     opts,
		manager:  manager,
		selector: sel,
		registry: reg,
		balances: balances,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	e := s.router()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			applog.Errorw("failed to shut down http server", "err", err)
		}
	}()

	err := e.Start(fmt.Sprintf(":%d", s.opts.Port))
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET(s.opts.HealthzPath, echo.WrapHandler(http.HandlerFunc(healthz.Handler)))
	e.GET(s.opts.MetricsPath, echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/tiers", s.listTiers)
	api.GET("/tiers/:key/pricing", s.tierPricing)
	api.GET("/providers/health", s.providersHealth)
	api.GET("/stats", s.stats)

	sessions := api.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("", s.listSessions)
	sessions.GET("/:id", s.getSession)
	sessions.POST("/:id/start", s.startSession)
	sessions.POST("/:id/pause", s.pauseSession)
	sessions.POST("/:id/stop", s.stopSession)
	sessions.GET("/:id/metrics", s.sessionMetrics)

	balances := api.Group("/balance")
	balances.GET("/:user", s.getBalance)
	balances.POST("/:user/credits", s.addCredits)
	balances.POST("/:user/free-minutes", s.grantFreeMinutes)

	return e
}

// response envelopes

func success(ctx echo.Context, status int, result interface{}) error {
	return ctx.JSON(status, map[string]interface{}{
		"status": "success",
		"result": result,
	})
}

func failure(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	code := apperrors.CodeOf(err)
	switch code {
	case consts.CodeInvalidTier, consts.CodeInvalidState:
		status = http.StatusBadRequest
	case consts.CodeInsufficientBalance:
		status = http.StatusPaymentRequired
	case consts.CodeForbidden:
		status = http.StatusForbidden
	case consts.CodeSessionNotFound:
		status = http.StatusNotFound
	case consts.CodeProvisioningFailed:
		status = http.StatusBadGateway
	case consts.CodeNoCapacity:
		status = http.StatusServiceUnavailable
	}
	return ctx.JSON(status, map[string]interface{}{
		"status": "error",
		"code":   code,
		"error":  err.Error(),
	})
}

// userOf reads the caller identity injected by the fronting auth layer.
func userOf(ctx echo.Context) string {
	if user := ctx.Request().Header.Get("X-User-Id"); user != "" {
		return user
	}
	return ctx.QueryParam("user")
}

func (s *Server) listTiers(ctx echo.Context) error {
	return success(ctx, http.StatusOK, tiers.List())
}

func (s *Server) tierPricing(ctx echo.Context) error {
	pricing, err := s.selector.GetTierPricing(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return failure(ctx, apperrors.New(consts.CodeInvalidTier, "%s", err.Error()))
	}
	return success(ctx, http.StatusOK, pricing)
}

func (s *Server) providersHealth(ctx echo.Context) error {
	return success(ctx, http.StatusOK, s.registry.GetHealthForAll(ctx.Request().Context()))
}

func (s *Server) stats(ctx echo.Context) error {
	return success(ctx, http.StatusOK, s.manager.Stats(ctx.Request().Context()))
}

func (s *Server) createSession(ctx echo.Context) error {
	var req session.CreateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if user := userOf(ctx); user != "" {
		req.UserID = user
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}

	sess, err := s.manager.Create(ctx.Request().Context(), &req)
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusCreated, sess)
}

func (s *Server) listSessions(ctx echo.Context) error {
	user := userOf(ctx)
	if user == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}
	return success(ctx, http.StatusOK, s.manager.List(ctx.Request().Context(), user))
}

func (s *Server) getSession(ctx echo.Context) error {
	sess, err := s.manager.Get(ctx.Request().Context(), ctx.Param("id"), userOf(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, sess)
}

func (s *Server) startSession(ctx echo.Context) error {
	sess, err := s.manager.Start(ctx.Request().Context(), ctx.Param("id"), userOf(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, sess)
}

func (s *Server) pauseSession(ctx echo.Context) error {
	sess, err := s.manager.Pause(ctx.Request().Context(), ctx.Param("id"), userOf(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, sess)
}

func (s *Server) stopSession(ctx echo.Context) error {
	summary, err := s.manager.Stop(ctx.Request().Context(), ctx.Param("id"), userOf(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, summary)
}

func (s *Server) sessionMetrics(ctx echo.Context) error {
	sample, err := s.manager.Metrics(ctx.Request().Context(), ctx.Param("id"), userOf(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, sample)
}

func (s *Server) getBalance(ctx echo.Context) error {
	b, err := s.balances.Get(ctx.Request().Context(), ctx.Param("user"))
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, b)
}

type creditsBody struct {
	Amount float64 `json:"amount"`
}

func (s *Server) addCredits(ctx echo.Context) error {
	var body creditsBody
	if err := ctx.Bind(&body); err != nil || body.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}
	b, err := s.balances.AddCredits(ctx.Request().Context(), ctx.Param("user"), body.Amount)
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, b)
}

type freeMinutesBody struct {
	Minutes int `json:"minutes"`
}

func (s *Server) grantFreeMinutes(ctx echo.Context) error {
	var body freeMinutesBody
	if err := ctx.Bind(&body); err != nil || body.Minutes <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "minutes must be positive")
	}
	b, err := s.balances.GrantFreeMinutes(ctx.Request().Context(), ctx.Param("user"), body.Minutes)
	if err != nil {
		return failure(ctx, err)
	}
	return success(ctx, http.StatusOK, b)
}
