package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/MyriadFlow/veritaschain-sub001/internal/logger"
)

const serviceName = "veritas-api"

// NewRouter wires all routes of the service.
func NewRouter(articles *ArticlesHandler, log *logger.Logger) (*echo.Echo, error) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger(log))

	e.GET("/health", Health)

	e.GET(ArticlesByAuthorPath, articles.GetArticlesByAuthor)
	e.Match([]string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		ArticlesByAuthorPath, articles.MethodNotAllowed)

	for _, page := range GovernancePages {
		e.GET(page.Path, ComingSoon(page))
	}

	return e, nil
}

// Health reports that the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

// RequestLogger logs every request once it has been served.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			log.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).WithFields(logrus.Fields{
				"method":      req.Method,
				"path":        req.URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("Request processed")

			return nil
		}
	}
}
