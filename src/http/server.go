// http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sphinx-core/spxverify/src/common"
	"github.com/sphinx-core/spxverify/src/core/sphincs/abi"
	"github.com/sphinx-core/spxverify/src/core/sphincs/batch"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"go.uber.org/zap"
)

// MaxBatchItems bounds the size of a single batch request.
const MaxBatchItems = 1024

// Server exposes the verifier over HTTP.
type Server struct {
	address  string
	router   *gin.Engine
	verifier *batch.Verifier
	log      *zap.Logger
}

// NewServer creates a new HTTP server. Metrics are served from gatherer,
// or from the default registry when gatherer is nil.
func NewServer(address string, verifier *batch.Verifier, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	s := &Server{
		address:  address,
		router:   r,
		verifier: verifier,
		log:      logger,
	}
	s.setupRoutes(gatherer)
	return s
}

// setupRoutes defines HTTP endpoints.
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.POST("/verify", s.handleVerify)
	s.router.POST("/verify/batch", s.handleBatch)
	s.router.POST("/verify/abi", s.handleABI)
	s.router.GET("/params", s.handleParams)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleVerify checks one signature. Malformed input is a 400, a signature
// that does not verify is a 200 with valid=false.
func (s *Server) handleVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	item, err := DecodeRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res := s.verifier.VerifyItem(item)
	if batch.IsMalformed(res) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: res.Error})
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleBatch checks many signatures; per-item errors stay in the results.
func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if len(req.Items) > MaxBatchItems {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("batch holds %d items, at most %d allowed", len(req.Items), MaxBatchItems)})
		return
	}

	items := make([]batch.Item, len(req.Items))
	for i, r := range req.Items {
		item, err := DecodeRequest(r)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("item %d: %v", i, err)})
			return
		}
		items[i] = item
	}

	results, err := s.verifier.VerifyBatch(c.Request.Context(), items)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	resp := BatchResponse{Results: results}
	for _, r := range results {
		if r.Valid {
			resp.Valid++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleABI checks a signature supplied as contract calldata.
func (s *Server) handleABI(c *gin.Context) {
	var req ABIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	data, err := common.DecodeInput(req.Calldata)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	call, err := abi.DecodeVerifyCall(s.verifier.Params(), data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res := s.verifier.VerifyItem(batch.Item{
		Message:   call.Message,
		Signature: types.MarshalSignature(call.Signature),
		PublicKey: types.MarshalPublicKey(call.PublicKey),
	})
	c.JSON(http.StatusOK, res)
}

// handleParams describes the active parameter set.
func (s *Server) handleParams(c *gin.Context) {
	p := s.verifier.Params()
	c.JSON(http.StatusOK, ParamsResponse{
		Name:          p.Name,
		N:             p.N,
		K:             p.K,
		A:             p.A,
		D:             p.D,
		HPrime:        p.HPrime,
		Hash:          p.Hash,
		PublicKeySize: p.PublicKeySize(),
		SignatureSize: p.SignatureSize(),
		DigestSize:    p.DigestSize(),
	})
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// DecodeRequest turns the hex or base58 fields of req into a batch item.
func DecodeRequest(req VerifyRequest) (batch.Item, error) {
	msg, err := common.DecodeInput(req.Message)
	if err != nil {
		return batch.Item{}, fmt.Errorf("message: %w", err)
	}
	sig, err := common.DecodeInput(req.Signature)
	if err != nil {
		return batch.Item{}, fmt.Errorf("signature: %w", err)
	}
	pk, err := common.DecodeInput(req.PublicKey)
	if err != nil {
		return batch.Item{}, fmt.Errorf("publicKey: %w", err)
	}
	return batch.Item{ID: req.ID, Message: msg, Signature: sig, PublicKey: pk}, nil
}

// requestLogger logs every request through zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
