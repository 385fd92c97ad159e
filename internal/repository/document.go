// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"libapi/internal/model"
)

// DashboardStats is the singleton aggregate projection for the dashboard.
// Sums are coalesced at the store so an empty table reads as zeros.
type DashboardStats struct {
	TotalBooks     int64 `json:"total_books"`
	TotalPapers    int64 `json:"total_exampapers"`
	NewBooks       int64 `json:"new_books"`
	NewPapers      int64 `json:"new_papers"`
	BookDownloads  int64 `json:"total_book_downloads"`
	PaperDownloads int64 `json:"total_paper_downloads"`
	BookViews      int64 `json:"view_book_total"`
	PaperViews     int64 `json:"view_paper_total"`
}

// DocumentRepository defines data access for library documents using SQL
// queries only. No business logic here — strictly persistence operations.
// Every lookup and mutation is scoped by the IS_PAPER discriminator where the
// operation is kind-specific.
type DocumentRepository interface {
	// Create inserts a new document record. BOOK_ID and UPLOAD_DATE are
	// assigned by the store and set on the returned document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns the document with the given id and discriminator.
	// Returns sql.ErrNoRows when absent.
	FindByID(ctx context.Context, id int64, isPaper bool) (*model.Document, error)

	// FindAnyByID returns the document with the given id regardless of kind.
	FindAnyByID(ctx context.Context, id int64) (*model.Document, error)

	// ListByLevelSubject returns documents of one kind for a level and
	// subject, newest upload first.
	ListByLevelSubject(ctx context.Context, level, subject string, isPaper bool) ([]model.Document, error)

	// IncrementViews bumps the view counter in a single atomic statement.
	IncrementViews(ctx context.Context, id int64, isPaper bool) error

	// IncrementDownloads bumps the download counter in a single atomic statement.
	IncrementDownloads(ctx context.Context, id int64, isPaper bool) error

	// CountByLevelSubject groups documents of one kind by level and subject,
	// keyed "LEVEL_SUBJECT".
	CountByLevelSubject(ctx context.Context, isPaper bool) (map[string]int, error)

	// DashboardStats returns the aggregate totals in one query.
	DashboardStats(ctx context.Context) (*DashboardStats, error)

	// Delete removes the document matching both id and discriminator.
	Delete(ctx context.Context, id int64, isPaper bool) error
}
