package models

import "time"

// Article represents an article indexed for an author address.
type Article struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	AuthorAddress string    `json:"author_address"`
	ContentHash   string    `json:"content_hash"`
	URL           string    `json:"url"`
	Tags          []string  `json:"tags"`
	PublishedAt   time.Time `json:"published_at"`
}
