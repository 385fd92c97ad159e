package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"libapi/internal/model"
	"libapi/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// documentColumns is the shared select list. Counters are coalesced so rows
// created before the counter columns existed read as zero.
const documentColumns = `
	book_id, title, author, description, subject, category, level, format,
	cloudinary_public_id, language, filename, file_path, file_size, book_year,
	upload_date, is_paper, examination_season,
	COALESCE(view_count, 0), COALESCE(download_count, 0)`

// Create inserts a new document row. UPLOAD_DATE is set by the store.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO books (
			title, author, description, subject, category, level, format,
			cloudinary_public_id, language, filename, file_path, file_size,
			book_year, upload_date, is_paper, examination_season
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), $14, $15)
		RETURNING book_id, upload_date
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.Title,
		nullString(doc.Author),
		doc.Description,
		doc.Subject,
		nullString(doc.Category),
		doc.Level,
		doc.Format,
		nullString(doc.StoragePublicID),
		nullString(doc.Language),
		doc.Filename,
		doc.FilePath,
		doc.FileSizeMB,
		nullString(doc.Year),
		doc.IsPaper,
		nullString(doc.ExaminationSeason),
	)
	out := *doc
	if err := row.Scan(&out.BookID, &out.UploadDate); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by id and discriminator.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64, isPaper bool) (*model.Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE book_id = $1 AND is_paper = $2`, documentColumns)
	return scanDocument(r.db.QueryRowContext(ctx, q, id, isPaper))
}

// FindAnyByID fetches a single document by id regardless of kind.
func (r *DocumentPostgres) FindAnyByID(ctx context.Context, id int64) (*model.Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE book_id = $1`, documentColumns)
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByLevelSubject returns one kind of document for a level and subject,
// newest upload first.
func (r *DocumentPostgres) ListByLevelSubject(ctx context.Context, level, subject string, isPaper bool) ([]model.Document, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM books
		WHERE subject = $1 AND level = $2 AND is_paper = $3
		ORDER BY upload_date DESC
	`, documentColumns)
	rows, err := r.db.QueryContext(ctx, q, subject, level, isPaper)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// IncrementViews bumps the view counter. The increment is a single statement
// so concurrent bumps on the same row cannot lose updates.
func (r *DocumentPostgres) IncrementViews(ctx context.Context, id int64, isPaper bool) error {
	const q = `UPDATE books SET view_count = COALESCE(view_count, 0) + 1 WHERE book_id = $1 AND is_paper = $2`
	_, err := r.db.ExecContext(ctx, q, id, isPaper)
	return err
}

// IncrementDownloads bumps the download counter in a single statement.
func (r *DocumentPostgres) IncrementDownloads(ctx context.Context, id int64, isPaper bool) error {
	const q = `UPDATE books SET download_count = COALESCE(download_count, 0) + 1 WHERE book_id = $1 AND is_paper = $2`
	_, err := r.db.ExecContext(ctx, q, id, isPaper)
	return err
}

// CountByLevelSubject groups one kind of document by level and subject.
func (r *DocumentPostgres) CountByLevelSubject(ctx context.Context, isPaper bool) (map[string]int, error) {
	const q = `SELECT level, subject, COUNT(*) FROM books WHERE is_paper = $1 GROUP BY level, subject`
	rows, err := r.db.QueryContext(ctx, q, isPaper)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level, subject string
		var total int
		if err := rows.Scan(&level, &subject, &total); err != nil {
			return nil, err
		}
		counts[fmt.Sprintf("%s_%s", level, subject)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// DashboardStats returns every dashboard aggregate in one round trip.
// Sums are coalesced so an empty table yields zeros, not NULLs.
func (r *DocumentPostgres) DashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	const q = `
		SELECT
			COUNT(*) FILTER (WHERE NOT is_paper)                                                        AS total_books,
			COUNT(*) FILTER (WHERE is_paper)                                                            AS total_exampapers,
			COUNT(*) FILTER (WHERE NOT is_paper AND upload_date >= now() - INTERVAL '1 month')          AS new_books,
			COUNT(*) FILTER (WHERE is_paper AND upload_date >= now() - INTERVAL '1 month')              AS new_papers,
			COALESCE(SUM(download_count) FILTER (WHERE NOT is_paper), 0)                                AS total_book_downloads,
			COALESCE(SUM(download_count) FILTER (WHERE is_paper), 0)                                    AS total_paper_downloads,
			COALESCE(SUM(view_count) FILTER (WHERE NOT is_paper), 0)                                    AS view_book_total,
			COALESCE(SUM(view_count) FILTER (WHERE is_paper), 0)                                        AS view_paper_total
		FROM books
	`
	var s repository.DashboardStats
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalBooks,
		&s.TotalPapers,
		&s.NewBooks,
		&s.NewPapers,
		&s.BookDownloads,
		&s.PaperDownloads,
		&s.BookViews,
		&s.PaperViews,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the row matching both id and discriminator.
func (r *DocumentPostgres) Delete(ctx context.Context, id int64, isPaper bool) error {
	const q = `DELETE FROM books WHERE book_id = $1 AND is_paper = $2`
	res, err := r.db.ExecContext(ctx, q, id, isPaper)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var author, category, publicID, language, year, season sql.NullString
	err := row.Scan(
		&d.BookID,
		&d.Title,
		&author,
		&d.Description,
		&d.Subject,
		&category,
		&d.Level,
		&d.Format,
		&publicID,
		&language,
		&d.Filename,
		&d.FilePath,
		&d.FileSizeMB,
		&year,
		&d.UploadDate,
		&d.IsPaper,
		&season,
		&d.ViewCount,
		&d.DownloadCount,
	)
	if err != nil {
		return nil, err
	}
	d.Author = author.String
	d.Category = category.String
	d.StoragePublicID = publicID.String
	d.Language = language.String
	d.Year = year.String
	d.ExaminationSeason = season.String
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
