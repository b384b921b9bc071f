package server

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/template"
)

// Source is the loaded data and template of one category
type Source struct {
	Deck     *deck.Deck
	Template *template.Template
}

// Server serves card data and renders card images on demand
type Server struct {
	Sources    map[card.Category]Source
	Rasterizer render.Rasterizer
	Assets     template.Assets
	OutputDir  string
	SVG        template.SVGOptions

	// Rand picks the cards of /cards/random
	Rand   *rand.Rand
	randMu sync.Mutex

	// font faces are not safe for concurrent use
	renderMu sync.Mutex
}

const defaultRandomCount = 5

func New(sources map[card.Category]Source, r render.Rasterizer, assets template.Assets, outputDir string) *Server {
	return &Server{
		Sources:    sources,
		Rasterizer: r,
		Assets:     assets,
		OutputDir:  outputDir,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Routes returns the gin engine with every route registered
func (s *Server) Routes(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
	}

	cards := r.Group("/cards")
	{
		cards.GET("/random", s.random)
		cards.GET("/svg/:type/:id", s.svg)
		cards.GET("/:type", s.list)
		cards.GET("/:type/:id", s.get)
		cards.GET("/:type/:id/image", s.image)
	}

	if s.OutputDir != "" {
		r.Static("/stock", s.OutputDir)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string, middleware ...gin.HandlerFunc) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(middleware...),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	categories := make([]string, 0, len(s.Sources))
	for _, cat := range card.Categories {
		if _, ok := s.Sources[cat]; ok {
			categories = append(categories, string(cat))
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "categories": categories})
}

func (s *Server) source(c *gin.Context) (Source, bool) {
	cat, err := card.ParseCategory(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return Source{}, false
	}
	src, ok := s.Sources[cat]
	if !ok || src.Deck == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not loaded: " + string(cat)})
		return Source{}, false
	}
	return src, true
}

func (s *Server) list(c *gin.Context) {
	src, ok := s.source(c)
	if !ok {
		return
	}

	items := make([]map[string]string, 0, src.Deck.Len())
	for _, rec := range src.Deck.Records {
		items = append(items, rec.Fields())
	}
	c.JSON(http.StatusOK, gin.H{
		"category": string(src.Deck.Category),
		"count":    len(items),
		"cards":    items,
	})
}

// random returns up to count distinct records of the category named by the type query
func (s *Server) random(c *gin.Context) {
	cat, err := card.ParseCategory(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, ok := s.Sources[cat]
	if !ok || src.Deck == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not loaded: " + string(cat)})
		return
	}

	count, err := strconv.Atoi(c.Query("count"))
	if err != nil || count <= 0 {
		count = defaultRandomCount
	}
	count = min(count, src.Deck.Len())

	s.randMu.Lock()
	perm := s.Rand.Perm(src.Deck.Len())
	s.randMu.Unlock()

	items := make([]map[string]string, 0, count)
	for _, i := range perm[:count] {
		items = append(items, src.Deck.Records[i].Fields())
	}
	c.JSON(http.StatusOK, gin.H{
		"category": string(cat),
		"count":    len(items),
		"cards":    items,
	})
}

func (s *Server) get(c *gin.Context) {
	src, ok := s.source(c)
	if !ok {
		return
	}
	rec, err := src.Deck.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec.Fields())
}

func (s *Server) image(c *gin.Context) {
	src, ok := s.source(c)
	if !ok {
		return
	}
	if src.Template == nil || s.Rasterizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rendering is not configured"})
		return
	}

	rec, err := src.Deck.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	filled, err := template.Fill(src.Template, rec, s.Assets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.renderMu.Lock()
	img, err := s.Rasterizer.Rasterize(c.Request.Context(), filled)
	s.renderMu.Unlock()
	if err != nil {
		status := http.StatusInternalServerError
		var rerr *render.RasterizationError
		if errors.As(err, &rerr) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Card-Warnings", strconv.Itoa(len(filled.Warnings)))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// svg serves the filled template of a card as an SVG document
func (s *Server) svg(c *gin.Context) {
	src, ok := s.source(c)
	if !ok {
		return
	}
	if src.Template == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no template loaded"})
		return
	}

	rec, err := src.Deck.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	filled, err := template.Fill(src.Template, rec, s.Assets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	s.renderMu.Lock()
	err = filled.EncodeSVG(&buf, s.SVG)
	s.renderMu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Card-Warnings", strconv.Itoa(len(filled.Warnings)))
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}
