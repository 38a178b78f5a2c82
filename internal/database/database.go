package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/MyriadFlow/veritaschain-sub001/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS articles (
		id             INTEGER PRIMARY KEY,
		title          TEXT NOT NULL,
		author_address TEXT NOT NULL,
		content_hash   TEXT NOT NULL,
		url            TEXT NOT NULL,
		published_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_address);
	CREATE TABLE IF NOT EXISTS article_tags (
		article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		tag        TEXT NOT NULL,
		PRIMARY KEY (article_id, tag)
	);
`

// Open opens the SQLite article index at path and creates the schema if missing.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open article index: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Seed inserts sample articles for local development. An index that already holds articles is left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}
	if count > 0 {
		return nil
	}

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	samples := []models.Article{
		{Title: "Proof of Publication", AuthorAddress: "0x9f2c4a1b7e3d", URL: "https://veritas.example/a/1", Tags: []string{"provenance"}, PublishedAt: base},
		{Title: "Signing Newsroom Edits", AuthorAddress: "0x9f2c4a1b7e3d", URL: "https://veritas.example/a/2", Tags: []string{"provenance", "signatures"}, PublishedAt: base.AddDate(0, 1, 0)},
		{Title: "Governance for Fact Checkers", AuthorAddress: "0x41d0be5a90c7", URL: "https://veritas.example/a/3", Tags: []string{"governance"}, PublishedAt: base.AddDate(0, 2, 0)},
	}

	for _, article := range samples {
		if _, err := InsertArticle(ctx, db, article, article.Title); err != nil {
			return err
		}
	}
	return nil
}

// InsertArticle stores the article and its tags in a single transaction and returns the new id.
// The content hash is derived from title and content unless the article already carries one.
func InsertArticle(ctx context.Context, db *sql.DB, article models.Article, content string) (int64, error) {
	if article.ContentHash == "" {
		article.ContentHash = contentHash(article.Title + content)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO articles(title, author_address, content_hash, url, published_at)
		VALUES (?, ?, ?, ?, ?)
	`, article.Title, article.AuthorAddress, article.ContentHash, article.URL, article.PublishedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert article %q: %w", article.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, tag := range article.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO article_tags(article_id, tag) VALUES (?, ?)
		`, id, tag); err != nil {
			return 0, fmt.Errorf("failed to tag article %d with %q: %w", id, tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit article %d: %w", id, err)
	}
	return id, nil
}

// GetArticlesByAuthor returns all articles of the author, newest first.
// The address is matched as given. An unknown author yields an empty, non-nil slice.
func GetArticlesByAuthor(ctx context.Context, db *sql.DB, author string) ([]models.Article, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, author_address, content_hash, url, published_at
		FROM articles
		WHERE author_address = ?
		ORDER BY published_at DESC, id DESC
	`, author)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	index := make(map[int64]int)
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.AuthorAddress, &a.ContentHash, &a.URL, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		a.Tags = []string{}
		index[a.ID] = len(articles)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		return articles, nil
	}

	tagRows, err := db.QueryContext(ctx, `
		SELECT t.article_id, t.tag
		FROM article_tags t
		JOIN articles a ON a.id = t.article_id
		WHERE a.author_address = ?
		ORDER BY t.tag
	`, author)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			id  int64
			tag string
		)
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if i, ok := index[id]; ok {
			articles[i].Tags = append(articles[i].Tags, tag)
		}
	}

	return articles, tagRows.Err()
}

func contentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
