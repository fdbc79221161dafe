package docModel

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	Title               string    `json:"title,omitempty"`
	Description         string    `json:"description,omitempty"`
	Author              string    `json:"author,omitempty"`
	Content             string    `json:"content,omitempty"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	ChunkOrder     int    `json:"chunk_order"`
	EmbeddingModel string `json:"embeddingModel"`
}

// SearchHit is one similarity-search result read back from the collection.
type SearchHit struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float32           `json:"score"`
}

type DocType string

var MD DocType = "MARKDOWN"
var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
