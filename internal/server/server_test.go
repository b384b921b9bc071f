package server

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/template"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const bonusJSON = `[
  {"id": "B1", "nomcartebonus": "Banananiia", "nomdupouvoir": "Augmentation de Puissance",
   "description": "Augmente les dégâts", "pourcentagebonus": 20, "tourbonus": 1},
  {"id": "B2", "nomcartebonus": "Bouclier", "nomdupouvoir": "Protection",
   "pourcentagebonus": "15", "tourbonus": 2}
]`

func newServer(t *testing.T, r render.Rasterizer, outputDir string) *Server {
	t.Helper()
	d, err := deck.Parse([]byte(bonusJSON), card.Bonus)
	if err != nil {
		t.Fatal(err)
	}
	tmpl, err := template.Builtin(card.Bonus)
	if err != nil {
		t.Fatal(err)
	}
	return New(map[card.Category]Source{card.Bonus: {Deck: d, Template: tmpl}}, r, nil, outputDir)
}

func serve(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(newServer(t, nil, ""), "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Status     string   `json:"status"`
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || len(body.Categories) != 1 || body.Categories[0] != "bonus" {
		t.Errorf("body = %+v", body)
	}
}

func TestListAndGet(t *testing.T) {
	s := newServer(t, nil, "")

	w := serve(s, "/cards/bonus")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Count int                 `json:"count"`
		Cards []map[string]string `json:"cards"`
	}
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 || list.Cards[0]["id"] != "B1" || list.Cards[0]["pourcentagebonus"] != "20" {
		t.Errorf("list = %+v", list)
	}

	w = serve(s, "/cards/b/B2")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var rec map[string]string
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec["nomcartebonus"] != "Bouclier" {
		t.Errorf("record = %v", rec)
	}
}

func TestNotFound(t *testing.T) {
	s := newServer(t, nil, "")
	for _, path := range []string{"/cards/monster", "/cards/perso", "/cards/bonus/B9", "/cards/bonus/B9/image"} {
		if w := serve(s, path); w.Code != http.StatusNotFound && w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
	if w := serve(s, "/cards/bonus/B1/image"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("image without rasterizer: status = %d, want 503", w.Code)
	}
}

func TestImageEndpoint(t *testing.T) {
	s := newServer(t, &render.Direct{Fonts: layout.DefaultFontSet(), Style: render.DefaultStyle}, "")

	w := serve(s, "/cards/bonus/B2/image")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	// missing description and background
	if got := w.Header().Get("X-Card-Warnings"); got != "2" {
		t.Errorf("X-Card-Warnings = %q, want 2", got)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 800 {
		t.Errorf("size = %v", b)
	}
}

type failing struct{}

func (failing) Rasterize(_ context.Context, f *template.Filled) (image.Image, error) {
	return nil, &render.RasterizationError{ID: f.ID(), Command: "fake", ExitCode: 1}
}

func TestImageEndpointRasterizationError(t *testing.T) {
	w := serve(newServer(t, failing{}, ""), "/cards/bonus/B1/image")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestStaticOutputDir(t *testing.T) {
	out := t.TempDir()
	path := card.ImagePath(out, card.Bonus, "B1")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	w := serve(newServer(t, nil, out), "/stock/bonus/B1.png")
	if w.Code != http.StatusOK || w.Body.String() != "png" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
}

type cardList struct {
	Category string              `json:"category"`
	Count    int                 `json:"count"`
	Cards    []map[string]string `json:"cards"`
}

func randomCards(t *testing.T, s *Server, path string) cardList {
	t.Helper()
	w := serve(s, path)
	if w.Code != http.StatusOK {
		t.Fatalf("%s: status = %d: %s", path, w.Code, w.Body.String())
	}
	var list cardList
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	return list
}

func TestRandomEndpoint(t *testing.T) {
	s := newServer(t, nil, "")
	s.Rand = rand.New(rand.NewSource(1))

	// default count is capped by the deck size
	list := randomCards(t, s, "/cards/random?type=bonus")
	if list.Count != 2 || len(list.Cards) != 2 || list.Category != "bonus" {
		t.Fatalf("list = %+v", list)
	}
	if list.Cards[0]["id"] == list.Cards[1]["id"] {
		t.Errorf("duplicate card in %+v", list.Cards)
	}

	list = randomCards(t, s, "/cards/random?type=b&count=1")
	if list.Count != 1 {
		t.Fatalf("count = %d, want 1", list.Count)
	}
	if id := list.Cards[0]["id"]; id != "B1" && id != "B2" {
		t.Errorf("id = %q", id)
	}

	if list := randomCards(t, s, "/cards/random?type=bonus&count=zero"); list.Count != 2 {
		t.Errorf("invalid count: got %d cards, want the default", list.Count)
	}
}

func TestRandomEndpointIsSeeded(t *testing.T) {
	a, b := newServer(t, nil, ""), newServer(t, nil, "")
	a.Rand = rand.New(rand.NewSource(42))
	b.Rand = rand.New(rand.NewSource(42))
	for i := 0; i < 5; i++ {
		ca := randomCards(t, a, "/cards/random?type=bonus&count=1")
		cb := randomCards(t, b, "/cards/random?type=bonus&count=1")
		if ca.Cards[0]["id"] != cb.Cards[0]["id"] {
			t.Fatalf("draw %d differs: %s vs %s", i, ca.Cards[0]["id"], cb.Cards[0]["id"])
		}
	}
}

func TestRandomEndpointBadType(t *testing.T) {
	s := newServer(t, nil, "")
	for _, path := range []string{"/cards/random", "/cards/random?type=monster"} {
		if w := serve(s, path); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
	if w := serve(s, "/cards/random?type=perso"); w.Code != http.StatusNotFound {
		t.Errorf("unloaded category: status = %d, want 404", w.Code)
	}
}

func TestSVGEndpoint(t *testing.T) {
	s := newServer(t, nil, "")
	s.SVG = template.SVGOptions{Fonts: layout.DefaultFontSet(), Fallback: render.DefaultStyle.Fallback}

	w := serve(s, "/cards/svg/bonus/B1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<svg") || !strings.Contains(body, "Banananiia") {
		t.Errorf("body = %s", body)
	}

	for _, path := range []string{"/cards/svg/bonus/B9", "/cards/svg/monster/B1"} {
		if w := serve(s, path); w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}
