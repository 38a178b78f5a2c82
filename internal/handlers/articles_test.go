package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyriadFlow/veritaschain-sub001/internal/handlers"
	"github.com/MyriadFlow/veritaschain-sub001/internal/logger"
	"github.com/MyriadFlow/veritaschain-sub001/internal/models"
	"github.com/MyriadFlow/veritaschain-sub001/internal/services"
)

var errTimeout = errors.New("timeout")

type serviceFunc func(ctx context.Context, author string) ([]models.Article, error)

func (f serviceFunc) GetArticlesByAuthor(ctx context.Context, author string) ([]models.Article, error) {
	return f(ctx, author)
}

func factoryFor(f serviceFunc) services.Factory {
	return func() (services.ArticleService, error) { return f, nil }
}

func newTestRouter(t *testing.T, factory services.Factory, timeout time.Duration) *echo.Echo {
	t.Helper()

	e, err := handlers.NewRouter(handlers.NewArticlesHandler(factory, logger.Discard(), timeout), logger.Discard())
	require.NoError(t, err)

	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestArticlesHandler_GetArticlesByAuthor(t *testing.T) {
	t.Parallel()

	t.Run("missing author", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		factory := func() (services.ArticleService, error) {
			calls.Add(1)
			return nil, nil
		}

		for _, target := range []string{handlers.ArticlesByAuthorPath, handlers.ArticlesByAuthorPath + "?author="} {
			rec := serve(newTestRouter(t, factory, 0), http.MethodGet, target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Author address is required"}`, rec.Body.String())
		}
		assert.Equal(t, int32(0), calls.Load(), "service must not be built without an author")
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(_ context.Context, author string) ([]models.Article, error) {
			assert.Equal(t, "0xABC", author)
			return []models.Article{}, nil
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})

	t.Run("nil result is encoded as empty list", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			return nil, nil
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})

	t.Run("articles are passed through", func(t *testing.T) {
		t.Parallel()

		published := time.Date(2024, time.May, 4, 10, 0, 0, 0, time.UTC)
		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			return []models.Article{{
				ID: 1, Title: "first", AuthorAddress: "0xABC", ContentHash: "abc",
				URL: "https://a/1", Tags: []string{"news"}, PublishedAt: published,
			}}, nil
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[{
			"id":1,"title":"first","author_address":"0xABC","content_hash":"abc",
			"url":"https://a/1","tags":["news"],"published_at":"2024-05-04T10:00:00Z"
		}]}`, rec.Body.String())
	})

	t.Run("author is forwarded unmodified", func(t *testing.T) {
		t.Parallel()

		var got string
		e := newTestRouter(t, factoryFor(func(_ context.Context, author string) ([]models.Article, error) {
			got = author
			return nil, nil
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=%20Not-An-Address%20")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, " Not-An-Address ", got)
	})

	t.Run("fresh service per request", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		factory := func() (services.ArticleService, error) {
			calls.Add(1)
			return serviceFunc(func(context.Context, string) ([]models.Article, error) { return nil, nil }), nil
		}
		e := newTestRouter(t, factory, 0)

		serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")
		serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("downstream failure", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			return nil, errTimeout
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"timeout"}`, rec.Body.String())
	})

	t.Run("error without message", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			return nil, errors.New("")
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"Unknown error"}`, rec.Body.String())
	})

	t.Run("panic with non-error value", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			panic(42)
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"Unknown error"}`, rec.Body.String())
	})

	t.Run("panic with error value", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(context.Context, string) ([]models.Article, error) {
			panic(errTimeout)
		}), 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"timeout"}`, rec.Body.String())
	})

	t.Run("factory failure", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, func() (services.ArticleService, error) {
			return nil, errors.New("indexer unavailable")
		}, 0)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"indexer unavailable"}`, rec.Body.String())
	})

	t.Run("request timeout", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(t, factoryFor(func(ctx context.Context, _ string) ([]models.Article, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}), 10*time.Millisecond)

		rec := serve(e, http.MethodGet, handlers.ArticlesByAuthorPath+"?author=0xABC")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch articles","details":"context deadline exceeded"}`, rec.Body.String())
	})
}

func TestArticlesHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := newTestRouter(t, func() (services.ArticleService, error) {
		calls.Add(1)
		return nil, nil
	}, 0)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, handlers.ArticlesByAuthorPath+"?author=0xABC",
				strings.NewReader(`{"author":"0xABC"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
		})
	}

	assert.Equal(t, int32(0), calls.Load())
}

func TestArticlesHandler_DirectContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?author=0xABC", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	h := handlers.NewArticlesHandler(factoryFor(func(context.Context, string) ([]models.Article, error) {
		return []models.Article{}, nil
	}), logger.Discard(), 0)

	if assert.NoError(t, h.GetArticlesByAuthor(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	}
}
