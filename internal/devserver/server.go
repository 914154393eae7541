// Package devserver runs the Lambda handler behind a local gin HTTP server.
package devserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultAddr     = ":8080"
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatbot",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served by the local server",
}, []string{"method", "status"})

// ProxyHandler is the API Gateway proxy entry point served by the Lambda.
type ProxyHandler interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

type Server struct {
	handler ProxyHandler
	addr    string
	debug   bool
	engine  *gin.Engine
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithDebug enables gin's debug mode and request logger.
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

func New(h ProxyHandler, opts ...Option) (*Server, error) {
	if h == nil {
		return nil, errors.New("devserver: handler must not be nil")
	}
	s := &Server{handler: h, addr: defaultAddr}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), countRequests())
	if s.debug {
		router.Use(gin.Logger())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(s.proxy)
	return router
}

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		requestsTotal.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// proxy converts the HTTP request into an API Gateway proxy event and
// writes the handler's response back.
func (s *Server) proxy(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_INPUT"})
		return
	}

	resp, err := s.handler.Handle(c.Request.Context(), toProxyRequest(c.Request, body))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "handler failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	out := []byte(resp.Body)
	if resp.IsBase64Encoded {
		if out, err = base64.StdEncoding.DecodeString(resp.Body); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "INTERNAL_ERROR"})
			return
		}
	}
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], out)
}

func toProxyRequest(r *http.Request, body []byte) events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  string(body),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting local server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devserver: listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down local server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("devserver: shutdown: %w", err)
	}
	return nil
}
