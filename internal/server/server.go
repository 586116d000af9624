package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papertrade/gopaper/internal/services"
)

// Server wires the trading service and auth into an HTTP API.
type Server struct {
	svc      *services.TradingService
	verifier TokenVerifier
}

func New(svc *services.TradingService, verifier TokenVerifier) *Server {
	return &Server{svc: svc, verifier: verifier}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/portfolio")
	api.Use(s.requireAuth())
	api.GET("/", s.wrap(s.handlePortfolio))
	api.POST("/buy", s.wrap(s.handleBuy))
	api.POST("/sell", s.wrap(s.handleSell))
	api.GET("/transactions", s.wrap(s.handleTransactions))

	return r
}

type userKeyType string

const userKey userKeyType = "gopaper_user_id"

// requireAuth decodes "Authorization: Bearer <token>" into a user id and
// stashes it in the request context. No token, no entry.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(c.Writer, http.StatusUnauthorized, "no token, authorization denied")
			c.Abort()
			return
		}
		userID, err := s.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			writeError(c.Writer, http.StatusUnauthorized, "token is not valid")
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), userKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// wrap adapts plain net/http handlers to gin.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c.Writer, c.Request)
	}
}

func userFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userKey).(string)
	return userID
}
