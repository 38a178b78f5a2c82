package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MyriadFlow/veritaschain-sub001/internal/logger"
	"github.com/MyriadFlow/veritaschain-sub001/internal/models"
	"github.com/MyriadFlow/veritaschain-sub001/internal/services"
)

const ArticlesByAuthorPath = "/api/veritas/articles-by-author"

const (
	msgAuthorRequired   = "Author address is required"
	msgFetchFailed      = "Failed to fetch articles"
	msgMethodNotAllowed = "Method not allowed"
	msgUnknownError     = "Unknown error"
)

// errUnknown stands in for panics that do not carry an error; its empty message maps to "Unknown error".
var errUnknown = errors.New("")

// ArticlesHandler serves the articles-by-author lookup.
type ArticlesHandler struct {
	newService services.Factory
	logger     *logger.Logger
	timeout    time.Duration
}

// NewArticlesHandler returns a handler that builds a fresh service from newService for every request.
// A zero timeout leaves the downstream call bounded only by the request context.
func NewArticlesHandler(newService services.Factory, log *logger.Logger, timeout time.Duration) *ArticlesHandler {
	return &ArticlesHandler{
		newService: newService,
		logger:     log,
		timeout:    timeout,
	}
}

// GetArticlesByAuthor handles GET /api/veritas/articles-by-author?author=<address>.
func (h *ArticlesHandler) GetArticlesByAuthor(c echo.Context) error {
	author := c.QueryParam("author")
	if author == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgAuthorRequired})
	}

	ctx := c.Request().Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	articles, err := h.fetch(ctx, author)
	if err != nil {
		h.logger.WithAuthor(author).WithField("error", err.Error()).Error("Failed to fetch articles")

		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   msgFetchFailed,
			Details: errorDetails(err),
		})
	}

	if articles == nil {
		articles = []models.Article{}
	}

	h.logger.WithAuthor(author).WithField("count", len(articles)).Debug("Articles fetched")

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: articles})
}

// MethodNotAllowed answers every non-GET method on the lookup path.
func (h *ArticlesHandler) MethodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: msgMethodNotAllowed})
}

// fetch calls the downstream service and turns panics into errors.
func (h *ArticlesHandler) fetch(ctx context.Context, author string) (articles []models.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			articles = nil
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errUnknown
		}
	}()

	svc, err := h.newService()
	if err != nil {
		return nil, err
	}

	return svc.GetArticlesByAuthor(ctx, author)
}

// errorDetails extracts the message reported to the client.
func errorDetails(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnknownError
	}
	return err.Error()
}
