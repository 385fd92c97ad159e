package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strings"

	"libapi/internal/catalog"
	"libapi/internal/fetch"
	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/storage"
	"libapi/internal/validation"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrReaderNil    = errors.New("upload payload is required")
	ErrMissingField = errors.New("missing required field")
	ErrNoFilePath   = errors.New("document has no storage url")

	// ErrStorage and ErrStore mark which leg of a dual-write failed so the
	// HTTP layer can report them distinctly.
	ErrStorage = errors.New("asset storage error")
	ErrStore   = errors.New("metadata store error")
)

// StorageFolder is the remote folder all library assets are uploaded under.
const StorageFolder = "library_books"

// UnknownAuthor is the placeholder for books uploaded without an author.
const UnknownAuthor = "Unknown Author"

// DeleteResult reports the outcome of the two-step delete. The metadata step
// is the primary result; the storage step outcome is advisory.
type DeleteResult struct {
	Level          string `json:"level"`
	Subject        string `json:"subject"`
	IsPaper        bool   `json:"is_paper"`
	StorageSkipped bool   `json:"storage_skipped"`
	StorageFailed  bool   `json:"storage_failed"`
}

// DownloadResult carries the fetched asset bytes and the name to serve them under.
type DownloadResult struct {
	Data     []byte
	Filename string
	Document *model.Document
}

// DashboardData aggregates everything the dashboard renders.
type DashboardData struct {
	Stats         *repository.DashboardStats `json:"stats"`
	BookCounts    map[string]int             `json:"book_counts"`
	PaperCounts   map[string]int             `json:"paper_counts"`
	SubjectEmojis map[string]string          `json:"subject_emojis"`
}

// LibraryService defines the use cases for the digital library.
type LibraryService interface {
	// Upload stores the payload remotely, then inserts the metadata record.
	// A storage failure aborts before any metadata write. A metadata failure
	// after a successful storage write is NOT rolled back: the remote asset
	// is left orphaned and the error reports the store leg distinctly.
	Upload(ctx context.Context, in *model.UploadInput) (*model.Document, error)

	// Delete removes the asset (best effort) and then the metadata record,
	// resolving the id first as a book and then as a paper.
	Delete(ctx context.Context, id int64) (*DeleteResult, error)

	// View resolves a document, bumps its view counter (best effort) and
	// returns it; the caller redirects to FilePath.
	View(ctx context.Context, id int64) (*model.Document, error)

	// Download fetches the asset bytes and bumps the download counter only
	// after a successful fetch.
	Download(ctx context.Context, id int64) (*DownloadResult, error)

	// ListBooks and ListPapers return one kind for a level and subject.
	ListBooks(ctx context.Context, level, subject string) ([]model.Document, error)
	ListPapers(ctx context.Context, level, subject string) ([]model.Document, error)

	// Dashboard returns the aggregate statistics and per-subject counts.
	Dashboard(ctx context.Context) (*DashboardData, error)

	// ShareLink builds a WhatsApp share URL for a level/subject listing.
	// A valid phone number addresses the share to that recipient; otherwise
	// WhatsApp prompts for one.
	ShareLink(level, subject, baseURL, phone string) string
}

// libraryService is a concrete implementation of LibraryService.
type libraryService struct {
	store   storage.Storage
	repo    repository.DocumentRepository
	fetcher *fetch.Client
}

// NewLibraryService constructs a new LibraryService.
func NewLibraryService(store storage.Storage, repo repository.DocumentRepository, fetcher *fetch.Client) LibraryService {
	return &libraryService{store: store, repo: repo, fetcher: fetcher}
}

func (s *libraryService) Upload(ctx context.Context, in *model.UploadInput) (*model.Document, error) {
	if in == nil || in.Reader == nil {
		return nil, ErrReaderNil
	}
	if strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("%w: subject", ErrMissingField)
	}
	if strings.TrimSpace(in.Level) == "" {
		return nil, fmt.Errorf("%w: level", ErrMissingField)
	}

	isPaper := in.Kind == model.KindPaper
	cleanedName := catalog.CleanFilename(in.Filename)
	format := catalog.FileFormat(in.Filename)
	description, author := buildDescription(in, cleanedName, isPaper)

	res, err := s.store.Upload(ctx, in.Reader, storage.UploadOptions{
		Folder:      StorageFolder,
		BaseName:    cleanedName,
		ContentType: in.ContentType,
		Size:        in.Size,
		Overwrite:   false,
		UniqueName:  true,
		Tags:        []string{in.Category, in.Level, in.Language},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload: %v", ErrStorage, err)
	}

	doc := &model.Document{
		Title:             catalog.StripExtension(cleanedName),
		Author:            author,
		Description:       description,
		Subject:           catalog.NormalizeSubject(in.Subject),
		Category:          in.Category,
		Level:             in.Level,
		Format:            format,
		StoragePublicID:   res.PublicID,
		Language:          in.Language,
		Filename:          cleanedName,
		FilePath:          res.URL,
		FileSizeMB:        bytesToMB(res.Bytes),
		Year:              in.Year,
		IsPaper:           isPaper,
		ExaminationSeason: in.ExamSeason,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// The stored object is intentionally left in place: deleting it here
		// could destroy an asset another writer just claimed under the same
		// unique key, and the original workflow accepts the orphan.
		logEvent(map[string]any{
			"component": "library",
			"event":     "upload_metadata_failed",
			"status":    "error",
			"public_id": res.PublicID,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w: save metadata: %v", ErrStore, err)
	}

	logEvent(map[string]any{
		"component": "library",
		"event":     "upload_complete",
		"status":    "success",
		"book_id":   stored.BookID,
		"public_id": stored.StoragePublicID,
		"is_paper":  stored.IsPaper,
	})
	return stored, nil
}

// buildDescription renders the kind-specific description template. Papers use
// the raw subject (not the canonical form) inside the free text.
func buildDescription(in *model.UploadInput, cleanedName string, isPaper bool) (description, author string) {
	author = strings.TrimSpace(in.Author)
	if isPaper {
		description = fmt.Sprintf("This is a %s question paper for the %s %s %s %s session ",
			in.Subject, author, in.Level, in.ExamSeason, in.Year)
		return description, author
	}
	if author == "" {
		author = UnknownAuthor
	}
	description = fmt.Sprintf("%s is an %s %s book written by %s ",
		cleanedName, in.Level, in.Subject, author)
	return description, author
}

func (s *libraryService) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	doc, err := s.resolveBookThenPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &DeleteResult{Level: doc.Level, Subject: doc.Subject, IsPaper: doc.IsPaper}

	if doc.StoragePublicID == "" {
		out.StorageSkipped = true
		logEvent(map[string]any{
			"component": "library",
			"event":     "delete_storage_skipped",
			"status":    "warning",
			"book_id":   id,
			"msg":       "no storage public id recorded",
		})
	} else if err := s.store.Destroy(ctx, doc.StoragePublicID); err != nil {
		// Non-fatal: the metadata delete still runs.
		out.StorageFailed = true
		logEvent(map[string]any{
			"component": "library",
			"event":     "delete_storage_failed",
			"status":    "warning",
			"book_id":   id,
			"public_id": doc.StoragePublicID,
			"error":     err.Error(),
		})
	}

	if err := s.repo.Delete(ctx, id, doc.IsPaper); err != nil {
		return nil, fmt.Errorf("%w: delete metadata: %v", ErrStore, err)
	}
	return out, nil
}

func (s *libraryService) View(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.FilePath == "" {
		return nil, ErrNoFilePath
	}

	// Counter failure never blocks the redirect.
	if err := s.repo.IncrementViews(ctx, id, doc.IsPaper); err != nil {
		logEvent(map[string]any{
			"component": "library",
			"event":     "view_count_failed",
			"status":    "warning",
			"book_id":   id,
			"error":     err.Error(),
		})
	}
	return doc, nil
}

func (s *libraryService) Download(ctx context.Context, id int64) (*DownloadResult, error) {
	doc, err := s.resolveBookThenPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.FilePath == "" {
		return nil, ErrNoFilePath
	}

	data, err := s.fetcher.Fetch(ctx, doc.FilePath)
	if err != nil {
		// Counters stay untouched on a failed fetch.
		return nil, fmt.Errorf("%w: download: %v", ErrStorage, err)
	}

	if err := s.repo.IncrementDownloads(ctx, id, doc.IsPaper); err != nil {
		logEvent(map[string]any{
			"component": "library",
			"event":     "download_count_failed",
			"status":    "warning",
			"book_id":   id,
			"error":     err.Error(),
		})
	}

	name := doc.Filename
	if name == "" {
		name = "document.pdf"
	}
	return &DownloadResult{Data: data, Filename: name, Document: doc}, nil
}

func (s *libraryService) ListBooks(ctx context.Context, level, subject string) ([]model.Document, error) {
	return s.repo.ListByLevelSubject(ctx, level, subject, false)
}

func (s *libraryService) ListPapers(ctx context.Context, level, subject string) ([]model.Document, error) {
	return s.repo.ListByLevelSubject(ctx, level, subject, true)
}

func (s *libraryService) Dashboard(ctx context.Context) (*DashboardData, error) {
	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	bookCounts, err := s.repo.CountByLevelSubject(ctx, false)
	if err != nil {
		return nil, err
	}
	paperCounts, err := s.repo.CountByLevelSubject(ctx, true)
	if err != nil {
		return nil, err
	}
	return &DashboardData{
		Stats:         stats,
		BookCounts:    bookCounts,
		PaperCounts:   paperCounts,
		SubjectEmojis: catalog.SubjectEmojis(),
	}, nil
}

// ShareLink builds a wa.me link whose message points back at the book listing
// for the given level and subject.
func (s *libraryService) ShareLink(level, subject, baseURL, phone string) string {
	emoji := catalog.SubjectEmoji(subject)
	listing := fmt.Sprintf("%s/books/%s/%s", strings.TrimRight(baseURL, "/"),
		url.PathEscape(level), url.PathEscape(subject))

	message := fmt.Sprintf("%s*Check out these %s books on our site!*%s\n\n "+
		"Subject: %s\n"+
		"Level: %s Level\n\n"+
		"👇 Click the link below to view:\n"+
		"%s",
		emoji, catalog.TitleCase(subject), emoji,
		catalog.TitleCase(subject),
		catalog.TitleCase(level),
		listing,
	)
	target := "https://wa.me/"
	if digits, err := validation.NormalizePhone(phone); err == nil {
		target += digits
	}
	return target + "?text=" + url.QueryEscape(message)
}

// resolveBookThenPaper looks an id up first as a book, then as a paper, which
// is how the delete and download flows determine the discriminator.
func (s *libraryService) resolveBookThenPaper(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id, false)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	doc, err = s.repo.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// bytesToMB converts a byte count to megabytes rounded to two decimals.
func bytesToMB(b int64) float64 {
	return math.Round(float64(b)/(1024*1024)*100) / 100
}

func logEvent(data map[string]any) {
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
