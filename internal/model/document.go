package model

import (
	"io"
	"time"
)

// Document represents a stored book or examination paper. Both kinds share one
// schema and are told apart by IsPaper.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	BookID            int64     `json:"book_id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Description       string    `json:"description"`
	Subject           string    `json:"subject"`
	Category          string    `json:"category"`
	Level             string    `json:"level"`
	Format            string    `json:"format"`
	StoragePublicID   string    `json:"storage_public_id"`
	Language          string    `json:"language"`
	Filename          string    `json:"filename"`
	FilePath          string    `json:"file_path"`
	FileSizeMB        float64   `json:"file_size_mb"`
	Year              string    `json:"year,omitempty"`
	UploadDate        time.Time `json:"upload_date"`
	IsPaper           bool      `json:"is_paper"`
	ExaminationSeason string    `json:"examination_season,omitempty"`
	ViewCount         int64     `json:"view_count"`
	DownloadCount     int64     `json:"download_count"`
}

// Upload kinds accepted by the upload form.
const (
	KindBook  = "book"
	KindPaper = "paper"
)

// UploadInput carries a file payload plus its classification metadata.
// Author holds the writing author for books and the examination body for papers.
type UploadInput struct {
	Subject    string
	Level      string
	Language   string
	Category   string
	Kind       string
	Author     string
	Year       string
	ExamSeason string

	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
