package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zoomdive/escape"
	"zoomdive/internal/config"
	"zoomdive/internal/store"
	"zoomdive/render"
	"zoomdive/view"
)

type server struct {
	st  *store.Store
	cfg *config.Config
}

// jobParams is the body of POST /api/v1/jobs. Zoom holds either a single
// factor shared by all centers or one factor per center.
type jobParams struct {
	Centers         [][2]float64 `json:"centers"`
	Zoom            []float64    `json:"zoom"`
	NZooms          int          `json:"n_zooms"`
	NSamples        int          `json:"n_samples"`
	NIterations     int          `json:"n_iterations"`
	DivergenceLimit float64      `json:"divergence_limit"`
	Palette         string       `json:"palette"`
}

// zoomFactors expands the zoom schedule to one factor per center.
func (p jobParams) zoomFactors() ([]float64, error) {
	if len(p.Zoom) == 1 {
		factors := make([]float64, len(p.Centers))
		for i := range factors {
			factors[i] = p.Zoom[0]
		}
		return factors, nil
	}
	if len(p.Zoom) != len(p.Centers) {
		return nil, view.ErrZoomCountMismatch
	}
	return p.Zoom, nil
}

func (p jobParams) validate() error {
	if len(p.Centers) == 0 {
		return errors.New("at least one center is required")
	}
	if len(p.Zoom) == 0 {
		return errors.New("a zoom factor is required")
	}
	if _, err := p.zoomFactors(); err != nil {
		return err
	}
	if p.NZooms <= 0 {
		return view.ErrInvalidZoomCount
	}
	if p.NSamples <= 0 {
		return view.ErrInvalidSampleCount
	}
	if p.NIterations <= 0 {
		return escape.ErrInvalidIterations
	}
	if p.DivergenceLimit <= 0 {
		return escape.ErrInvalidLimit
	}
	return nil
}

func setupRouter(s *server) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		jobs := api.Group("/jobs")
		{
			jobs.POST("", s.createJob)
			jobs.GET("/:id", s.getJob)
			jobs.GET("/:id/views", s.listViews)
			jobs.GET("/:id/views/:n", s.getViewPNG)
		}
	}

	r.GET("/ws/jobs/:id", s.jobProgressWS)

	return r
}

// createJob handles POST /api/v1/jobs: validate, persist, schedule.
func (s *server) createJob(c *gin.Context) {
	var p jobParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := p.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pal, err := render.ByName(p.Palette)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := len(p.Centers) * p.NZooms
	id, err := s.st.CreateJob(string(raw), total)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go newJobScheduler(s.st, id, p, pal, s.cfg.Workers).run()

	c.JSON(http.StatusCreated, gin.H{"id": id, "total_views": total})
}

// getJob handles GET /api/v1/jobs/:id.
func (s *server) getJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	j, err := s.st.JobByID(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             j.ID,
		"status":         j.Status,
		"finished_views": j.FinishedViews,
		"total_views":    j.TotalViews,
		"created_at":     j.CreatedAt,
		"updated_at":     j.UpdatedAt,
	})
}

// listViews handles GET /api/v1/jobs/:id/views.
func (s *server) listViews(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	if _, err := s.st.JobByID(id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	refs, err := s.st.ListViews(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": refs, "count": len(refs)})
}

// getViewPNG handles GET /api/v1/jobs/:id/views/:n, serving the n-th stored
// view of the job as image/png.
func (s *server) getViewPNG(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view index"})
		return
	}
	png, err := s.st.ViewPNG(id, n)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return id, true
}
