package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MyriadFlow/veritaschain-sub001/internal/database"
	"github.com/MyriadFlow/veritaschain-sub001/internal/models"
)

// ErrIndexerStatus is returned when the chain indexer answers with a non-2xx status.
var ErrIndexerStatus = errors.New("indexer returned unexpected status")

// ArticleService looks up the articles published by an author address.
type ArticleService interface {
	GetArticlesByAuthor(ctx context.Context, authorAddress string) ([]models.Article, error)
}

// Factory builds the service used for a single request.
type Factory func() (ArticleService, error)

// NewHTTPClient returns the client shared by indexer services.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:       100,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: false,
		},
	}
}

// IndexerService queries a remote chain indexer over HTTP.
type IndexerService struct {
	baseURL string
	client  *http.Client
}

func NewIndexerService(baseURL string, client *http.Client) *IndexerService {
	return &IndexerService{baseURL: baseURL, client: client}
}

// IndexerFactory returns a Factory creating a fresh IndexerService per call.
// All services share client so connections are pooled.
func IndexerFactory(baseURL string, client *http.Client) Factory {
	return func() (ArticleService, error) {
		return NewIndexerService(baseURL, client), nil
	}
}

func (s *IndexerService) GetArticlesByAuthor(ctx context.Context, authorAddress string) ([]models.Article, error) {
	articlesURL := fmt.Sprintf("%s/articles?author=%s", s.baseURL, url.QueryEscape(authorAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articlesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating indexer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling indexer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading indexer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrIndexerStatus, resp.Status)
	}

	var result struct {
		Articles []models.Article `json:"articles"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error parsing indexer response: %w", err)
	}

	if result.Articles == nil {
		result.Articles = []models.Article{}
	}
	return result.Articles, nil
}

// StoreService reads articles from the local SQLite index.
type StoreService struct {
	db *sql.DB
}

func NewStoreService(db *sql.DB) *StoreService {
	return &StoreService{db: db}
}

// StoreFactory returns a Factory creating a fresh StoreService per call on top of db.
func StoreFactory(db *sql.DB) Factory {
	return func() (ArticleService, error) {
		return NewStoreService(db), nil
	}
}

func (s *StoreService) GetArticlesByAuthor(ctx context.Context, authorAddress string) ([]models.Article, error) {
	return database.GetArticlesByAuthor(ctx, s.db, authorAddress)
}
