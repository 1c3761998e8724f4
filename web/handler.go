package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cian-radar/geo"
	"cian-radar/models"
	"cian-radar/services"
	"cian-radar/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	// tableLimit caps the result table, the histogram still covers the
	// full filtered set.
	tableLimit = 20

	suggestLimit = 5
	// minSuggestRunes keeps the autocomplete from querying the geocoder
	// on every keystroke of a short prefix.
	minSuggestRunes = 4
)

// Fetcher runs one listing search against the listing source.
type Fetcher interface {
	Search(ctx context.Context, params models.SearchParams) ([]models.RawListing, error)
}

// Geocoder resolves addresses and feeds the autocomplete.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (geo.Point, error)
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
}

// Handler serves the search UI and runs the analysis pipeline for each
// submitted search.
type Handler struct {
	geocoder Geocoder
	fetcher  Fetcher
	analyzer *services.Analyzer
	logger   *utils.Logger
}

// NewHandler wires the pipeline pieces into a request handler.
func NewHandler(geocoder Geocoder, fetcher Fetcher, analyzer *services.Analyzer, logger *utils.Logger) *Handler {
	return &Handler{
		geocoder: geocoder,
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes attached.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog())
	r.SetHTMLTemplate(pageTemplates())

	r.GET("/", h.handleIndex)
	r.POST("/search", h.handleSearch)
	r.GET("/api/suggest", h.handleSuggest)
	r.GET("/health", h.handleHealth)
	return r
}

func (h *Handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("[web] %s %s -> %d (%v)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Truncate(time.Millisecond))
	}
}

// formData backs the search form template.
type formData struct {
	Address  string
	RadiusKm float64
	DealType string
	Error    string
}

func defaultForm() formData {
	return formData{RadiusKm: 1.0, DealType: string(models.DealSecondary)}
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", defaultForm())
}

func (h *Handler) handleSearch(c *gin.Context) {
	params, err := paramsFromForm(c)
	if err != nil {
		form := defaultForm()
		form.Address = c.PostForm("address")
		form.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", form)
		return
	}

	report := h.runSearch(c.Request.Context(), params)
	c.HTML(http.StatusOK, "result.html", report)
}

func (h *Handler) handleSuggest(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < minSuggestRunes {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	names, err := h.geocoder.Suggest(c.Request.Context(), query, suggestLimit)
	if err != nil {
		// Autocomplete is best-effort, a geocoder hiccup is not a page error.
		h.logger.Warn("[web] suggest %q: %v", query, err)
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": names})
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type searchForm struct {
	Address  string   `form:"address"`
	RadiusKm float64  `form:"radius"`
	DealType string   `form:"deal_type"`
	Rooms    []string `form:"rooms"`
}

func paramsFromForm(c *gin.Context) (models.SearchParams, error) {
	var form searchForm
	if err := c.ShouldBind(&form); err != nil {
		return models.SearchParams{}, fmt.Errorf("malformed form: %w", err)
	}

	dealType, err := models.ParseDealType(form.DealType)
	if err != nil {
		return models.SearchParams{}, err
	}

	rooms := make([]models.Room, 0, len(form.Rooms))
	for _, r := range form.Rooms {
		room, err := models.ParseRoom(r)
		if err != nil {
			return models.SearchParams{}, err
		}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		rooms = models.DefaultRooms()
	}

	params := models.SearchParams{
		Address:  strings.TrimSpace(form.Address),
		RadiusKm: form.RadiusKm,
		DealType: dealType,
		Rooms:    rooms,
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// runSearch drives one full pipeline pass: geocode for display, fetch,
// normalize, filter, aggregate. A failed fetch short-circuits with the
// error on the report, nothing downstream runs without data.
func (h *Handler) runSearch(ctx context.Context, params models.SearchParams) models.Report {
	start := time.Now()
	report := models.Report{
		SearchID: uuid.NewString(),
		Params:   params,
	}

	h.logger.Info("[web] search %s: %q, %.1f km, %s, rooms %v",
		report.SearchID, params.Address, params.RadiusKm, params.DealType, params.Rooms)

	// Display-only resolve. The fetcher resolves on its own, and a
	// failure there is the one that fails the search.
	if pt, err := h.geocoder.Resolve(ctx, params.Address); err != nil {
		h.logger.Warn("[web] search %s: resolve for display failed: %v", report.SearchID, err)
	} else {
		report.Resolved = true
		report.ResolvedLat = pt.Lat
		report.ResolvedLon = pt.Lon
	}

	raw, err := h.fetcher.Search(ctx, params)
	if err != nil {
		h.logger.Error("[web] search %s failed: %v", report.SearchID, err)
		report.Error = err.Error()
		report.Elapsed = time.Since(start).Truncate(time.Millisecond)
		return report
	}
	report.Fetched = len(raw)

	listings, excl := h.analyzer.Normalize(raw)
	report.Normalized = len(listings)

	kept := h.analyzer.FilterOutliers(listings)
	report.Kept = len(kept)
	if dropped := report.Fetched - report.Kept; dropped > 0 {
		h.logger.Info("[web] search %s: kept %d of %d offers (malformed: %d, out of band: %d)",
			report.SearchID, report.Kept, report.Fetched, excl.Total(), report.Normalized-report.Kept)
	}

	if avg, ok := h.analyzer.AveragePricePerArea(kept); ok {
		report.Average = avg
		report.HasAverage = true
	}

	values := make([]float64, len(kept))
	for i, l := range kept {
		values[i] = l.PricePerArea
	}
	report.Histogram = services.BuildHistogram(values, services.HistogramBuckets)

	if len(kept) > tableLimit {
		report.Rows = kept[:tableLimit]
	} else {
		report.Rows = kept
	}

	report.Elapsed = time.Since(start).Truncate(time.Millisecond)
	return report
}

func pageTemplates() *template.Template {
	t := template.New("").Funcs(template.FuncMap{
		"rub":        services.FormatRub,
		"histLabels": histLabels,
		"histCounts": histCounts,
	})
	return template.Must(t.ParseFS(templatesFS, "templates/*.html"))
}

// histLabels renders bucket midpoints as chart labels.
func histLabels(h models.Histogram) template.JS {
	labels := make([]string, len(h.Buckets))
	for i, b := range h.Buckets {
		labels[i] = services.FormatRub((b.From + b.To) / 2)
	}
	return marshalJS(labels)
}

func histCounts(h models.Histogram) template.JS {
	counts := make([]int, len(h.Buckets))
	for i, b := range h.Buckets {
		counts[i] = b.Count
	}
	return marshalJS(counts)
}

func marshalJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(b)
}
