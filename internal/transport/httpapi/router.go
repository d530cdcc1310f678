// Package httpapi exposes a computed run over HTTP: the indicator outputs as
// JSON and the rendered chart page.
package httpapi

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taplot/internal/engine"
	"taplot/internal/logger"
	"taplot/internal/registry"
)

// Router serves the outputs of one run.
type Router struct {
	mu       sync.RWMutex
	htmlPath string
	byID     map[string]IndicatorResponse
	order    []string
}

// NewRouter creates a router. htmlPath may be empty when no chart page was
// rendered.
func NewRouter(htmlPath string) *Router {
	return &Router{
		htmlPath: htmlPath,
		byID:     make(map[string]IndicatorResponse),
	}
}

// IndicatorResponse is the API representation of one computed indicator.
type IndicatorResponse struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Name     string           `json:"name"`
	Lookback int              `json:"lookback"`
	First    int              `json:"first"`
	Outputs  []OutputResponse `json:"outputs"`
}

// OutputResponse carries one output series. Values holds only the valid
// region; samples before First are omitted.
type OutputResponse struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	First  int       `json:"first"`
	Length int       `json:"length"`
	Reals  []float64 `json:"reals,omitempty"`
	Ints   []int     `json:"ints,omitempty"`
}

// AddIndicator snapshots a computed indicator under a fresh id and returns
// the id.
func (r *Router) AddIndicator(label string, ind *engine.Indicator) string {
	resp := IndicatorResponse{
		ID:       uuid.NewString(),
		Label:    label,
		Name:     ind.Name(),
		Lookback: ind.Lookback(),
		First:    ind.First(),
	}
	for _, out := range ind.Outputs() {
		or := OutputResponse{
			Name:   out.Name,
			Kind:   out.Kind.String(),
			First:  out.First(),
			Length: out.Len(),
		}
		if out.Kind == registry.KindInteger {
			or.Ints = out.Int.Valid()
		} else {
			or.Reals = out.Real.Valid()
		}
		resp.Outputs = append(resp.Outputs, or)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resp.ID] = resp
	r.order = append(r.order, resp.ID)
	return resp.ID
}

// Register registers the API routes.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/indicators", r.handleList)
	group.GET("/indicators/:id", r.handleGet)
}

func (r *Router) handleList(c *gin.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type summary struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Name    string `json:"name"`
		First   int    `json:"first"`
		Outputs int    `json:"outputs"`
	}
	out := make([]summary, 0, len(r.order))
	for _, id := range r.order {
		resp := r.byID[id]
		out = append(out, summary{
			ID: resp.ID, Label: resp.Label, Name: resp.Name,
			First: resp.First, Outputs: len(resp.Outputs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	c.JSON(http.StatusOK, gin.H{"indicators": out})
}

func (r *Router) handleGet(c *gin.Context) {
	id := c.Param("id")
	r.mu.RLock()
	resp, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown indicator id"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) handleChart(c *gin.Context) {
	if r.htmlPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chart was rendered for this run"})
		return
	}
	c.File(r.htmlPath)
}

// Engine builds the gin engine with all routes registered.
func (r *Router) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	r.Register(e.Group("/api"))
	e.GET("/chart", r.handleChart)
	e.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/chart")
	})
	return e
}

// Run serves until the listener fails.
func (r *Router) Run(addr string) error {
	logger.Infof("[http] serving on %s", addr)
	return r.Engine().Run(addr)
}
