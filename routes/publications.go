package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pubhub/models"
	"pubhub/services"
)

// PublicationCreator erfasst neue Publikationen.
type PublicationCreator interface {
	CreatePublication(ctx context.Context, req services.CreatePublicationRequest) (models.PublicationView, error)
}

// PublicationLister liest Publikationen samt Autoren.
type PublicationLister interface {
	ListPublications(ctx context.Context, publishYear *int) ([]models.PublicationView, error)
}

// flexInt akzeptiert Zahlen und numerische Strings ("1999").
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexID akzeptiert Autor-IDs als String oder Zahl.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid author id %s", b)
	}
	*f = flexID(n.String())
	return nil
}

type createPublicationBody struct {
	Title       string   `json:"title" binding:"required"`
	PublishYear flexInt  `json:"publish_year" binding:"required"`
	AuthorIDs   []flexID `json:"author_ids" binding:"required"`
}

// SetupPublicationRoutes registriert POST und GET /publications.
func SetupPublicationRoutes(router gin.IRouter, creator PublicationCreator, lister PublicationLister, log *zap.Logger) {
	rg := router.Group("/publications")

	rg.POST("", func(c *gin.Context) {
		var body createPublicationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		ids := make([]string, len(body.AuthorIDs))
		for i, id := range body.AuthorIDs {
			ids[i] = string(id)
		}
		view, err := creator.CreatePublication(c.Request.Context(), services.CreatePublicationRequest{
			Title:       body.Title,
			PublishYear: int(body.PublishYear),
			AuthorIDs:   ids,
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	})

	rg.GET("", func(c *gin.Context) {
		var year *int
		raw := c.Query("PublishYear")
		if raw == "" {
			raw = c.Query("publish_year")
		}
		if raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "PublishYear must be an integer"})
				return
			}
			year = &y
		}

		views, err := lister.ListPublications(c.Request.Context(), year)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, views)
	})
}

// writeError bildet Service-Fehler auf HTTP-Status ab. Interne Details landen
// nur im Log.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": flatten(err)})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": flatten(err)})
	default:
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func flatten(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
