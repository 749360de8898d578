package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"affiliate-locator/internal/models"
	"affiliate-locator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplateName = "affiliates.html"

// PageTemplate returns the parsed HTML templates served by AffiliateHandler.Page.
func PageTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// AffiliateService interface for dependency injection
type AffiliateService interface {
	WithinDistance(ctx context.Context, q service.Query) ([]models.Affiliate, error)
	ClearCache(ctx context.Context) error
	DefaultDistanceKm() float64
}

// AffiliateHandler handles affiliate requests
type AffiliateHandler struct {
	service AffiliateService
	office  string
	logger  zerolog.Logger
}

// NewAffiliateHandler creates a new affiliate handler
func NewAffiliateHandler(svc AffiliateService, office string, logger zerolog.Logger) *AffiliateHandler {
	return &AffiliateHandler{
		service: svc,
		office:  office,
		logger:  logger.With().Str("component", "affiliate_handler").Logger(),
	}
}

// AffiliatesResponse is the JSON envelope returned by the affiliates API.
type AffiliatesResponse struct {
	Data []models.Affiliate `json:"data"`
}

// List handles GET /api/affiliates requests
//
//	@Summary		List affiliates near the office
//	@Description	Returns affiliates within max_distance km of the office, each with its distance.
//	@Tags			affiliates
//	@Produce		json
//	@Param			max_distance	query		number	false	"Radius in kilometres (defaults to the configured limit)"
//	@Param			sort			query		string	false	"Sort key"	Enums(affiliate_id, name, distance, latitude, longitude)
//	@Param			order			query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200				{object}	AffiliatesResponse
//	@Failure		400				{object}	map[string]string
//	@Failure		404				{object}	AffiliatesResponse
//	@Router			/api/affiliates [get]
func (h *AffiliateHandler) List(c *gin.Context) {
	var q service.Query

	if raw := c.Query("max_distance"); raw != "" {
		maxDistance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_distance format"})
			return
		}
		q.MaxDistanceKm = &maxDistance
	}

	q.SortBy = c.Query("sort")

	switch c.DefaultQuery("order", "asc") {
	case "asc":
	case "desc":
		q.Descending = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be 'asc' or 'desc'"})
		return
	}

	affiliates, err := h.service.WithinDistance(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, models.ErrUnknownSortKey) || errors.Is(err, service.ErrInvalidDistance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("failed to list affiliates")
		c.JSON(http.StatusNotFound, AffiliatesResponse{Data: []models.Affiliate{}})
		return
	}

	c.JSON(http.StatusOK, AffiliatesResponse{Data: affiliates})
}

// ClearCache handles DELETE /api/affiliates/cache requests
//
//	@Summary	Clear the affiliates cache
//	@Tags		affiliates
//	@Success	204
//	@Failure	500	{object}	map[string]string
//	@Router		/api/affiliates/cache [delete]
func (h *AffiliateHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear affiliates cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

type pageRow struct {
	ID        int
	Name      string
	Latitude  float64
	Longitude float64
	Distance  float64
}

type pageData struct {
	Office     string
	DistanceKm string
	Affiliates []pageRow
	Error      string
}

// Page handles GET / requests, rendering the affiliates as an HTML table
func (h *AffiliateHandler) Page(c *gin.Context) {
	data := pageData{
		Office:     h.office,
		DistanceKm: strconv.FormatFloat(h.service.DefaultDistanceKm(), 'f', -1, 64),
	}

	affiliates, err := h.service.WithinDistance(c.Request.Context(), service.Query{})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render affiliates page")
		data.Error = "Error loading affiliates: " + err.Error()
	}

	for _, a := range affiliates {
		row := pageRow{ID: a.ID, Name: a.Name, Latitude: a.Latitude, Longitude: a.Longitude}
		if a.Distance != nil {
			row.Distance = *a.Distance
		}
		data.Affiliates = append(data.Affiliates, row)
	}

	c.HTML(http.StatusOK, pageTemplateName, data)
}
