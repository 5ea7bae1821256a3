package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-rag-chat/rag"
)

const (
	EndPointHealth    = "/health"
	EndPointUpload    = "/upload"
	EndPointUploadPDF = "/upload-pdf"
	EndPointQuery     = "/query"
	EndPointAsk       = "/ask"
	EndPointIndex     = "/index"
	EndPointMetrics   = "/metrics"

	// Max 10MB for safety
	maxPDFSize = 10 << 20
)

type Server struct {
	store    *rag.InMemoryStore
	pipeline *rag.Pipeline
	registry *prometheus.Registry
	metrics  *metrics
	log      log.Interface
}

func New(p *rag.Pipeline, logger log.Interface) *Server {
	if logger == nil {
		logger = log.Log
	}
	reg := prometheus.NewRegistry()
	return &Server{
		store:    rag.NewInMemoryStore(),
		pipeline: p,
		registry: reg,
		metrics:  newMetrics(reg),
		log:      logger,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware())

	router.GET(EndPointHealth, s.healthHandler)
	router.POST(EndPointUpload, s.uploadHandler)
	router.POST(EndPointUploadPDF, s.uploadPDFHandler)
	router.POST(EndPointQuery, s.queryHandler)
	router.POST(EndPointAsk, s.askHandler)
	router.DELETE(EndPointIndex, s.resetHandler)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return router
}

func (s *Server) Run(addr string) error {
	s.log.Infof("Server running on %s", addr)
	return s.Router().Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

// index splits and embeds a document into the shared store.
func (s *Server) index(c *gin.Context, doc rag.Document) (int, error) {
	chunks := s.pipeline.Splitter.Split(doc)
	if len(chunks) == 0 {
		return 0, rag.ErrEmptyDocument
	}
	if _, err := s.pipeline.Index(c.Request.Context(), s.store, chunks); err != nil {
		return 0, err
	}
	s.metrics.chunks.Add(float64(len(chunks)))
	return len(chunks), nil
}

// POST /upload?source=name  (body: raw text)
func (s *Server) uploadHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body")
		return
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		c.String(http.StatusBadRequest, "empty body")
		return
	}

	n, err := s.index(c, rag.Document{Source: c.DefaultQuery("source", "doc1"), Content: text})
	if err != nil {
		s.log.WithError(err).Error("failed to index upload")
		c.String(http.StatusBadGateway, "failed to index document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chunks_added": n,
	})
}

// POST /upload-pdf  (multipart field "file")
func (s *Server) uploadPDFHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPDFSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, "missing file field")
		return
	}
	file, err := header.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to open upload")
		return
	}
	defer file.Close()

	text, err := rag.ExtractPDFText(file, header.Size)
	if err != nil {
		s.log.WithError(err).WithField("filename", header.Filename).Warn("unreadable pdf")
		c.String(http.StatusBadRequest, "failed to read pdf")
		return
	}
	if strings.TrimSpace(text) == "" {
		c.String(http.StatusBadRequest, "no text extracted from pdf")
		return
	}

	n, err := s.index(c, rag.Document{Source: header.Filename, Content: text})
	if err != nil {
		s.log.WithError(err).Error("failed to index pdf")
		c.String(http.StatusBadGateway, "failed to index document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chunks_added": n,
		"filename":     header.Filename,
	})
}

// DELETE /index
func (s *Server) resetHandler(c *gin.Context) {
	n := s.store.Clear()
	s.log.WithField("chunks", n).Info("index cleared")
	c.JSON(http.StatusOK, gin.H{
		"chunks_removed": n,
	})
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func bindQuery(c *gin.Context) (queryRequest, bool) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid json")
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		c.String(http.StatusBadRequest, "query is required")
		return req, false
	}
	return req, true
}

// POST /query  { "query": "your question", "k": 3 }
func (s *Server) queryHandler(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}

	r := s.pipeline.Retriever(s.store)
	if req.K > 0 {
		r.K = req.K
	}
	results, err := r.Retrieve(c.Request.Context(), req.Query)
	if err != nil {
		s.log.WithError(err).Error("retrieval failed")
		c.String(http.StatusBadGateway, "retrieval failed")
		return
	}

	c.JSON(http.StatusOK, results)
}

type askResponse struct {
	Answer  string             `json:"answer"`
	Sources []rag.SearchResult `json:"sources"`
}

// POST /ask  { "query": "your question" }
func (s *Server) askHandler(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	if s.pipeline.Generator == nil {
		c.String(http.StatusServiceUnavailable, "answer generation is not configured")
		return
	}

	ans, err := s.pipeline.Answer(c.Request.Context(), req.Query, s.pipeline.Retriever(s.store))
	switch {
	case errors.Is(err, rag.ErrNoResults):
		c.String(http.StatusNotFound, "no documents indexed")
		return
	case err != nil:
		s.log.WithError(err).Error("answer failed")
		c.String(http.StatusBadGateway, "answer failed")
		return
	}

	c.JSON(http.StatusOK, askResponse{Answer: ans.Text, Sources: ans.Sources})
}
