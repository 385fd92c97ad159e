package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libapi/internal/fetch"
	"libapi/internal/model"
	"libapi/internal/repository"
	repoMocks "libapi/internal/repository/mocks"
	"libapi/internal/storage"
	storeMocks "libapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) LibraryService {
	return NewLibraryService(mStore, mRepo, fetch.New(0))
}

func paperInput(r *strings.Reader) *model.UploadInput {
	return &model.UploadInput{
		Subject:     "science",
		Level:       "O Level",
		Language:    "English",
		Category:    "Sciences",
		Kind:        model.KindPaper,
		Author:      "ZIMSEC",
		Year:        "2023",
		ExamSeason:  "June",
		Filename:    "june paper 2.pdf",
		ContentType: "application/pdf",
		Size:        11,
		Reader:      r,
	}
}

func TestLibraryService_Upload_Paper(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newService(mStore, mRepo)

	r := strings.NewReader("hello world")
	in := paperInput(r)

	mStore.On("Upload", ctx, r, storage.UploadOptions{
		Folder:      StorageFolder,
		BaseName:    "june_paper_2.pdf",
		ContentType: "application/pdf",
		Size:        11,
		Overwrite:   false,
		UniqueName:  true,
		Tags:        []string{"Sciences", "O Level", "English"},
	}).Return(storage.UploadResult{
		URL:      "https://assets.example.com/library/library_books/june_paper_2-ab12cd34.pdf",
		PublicID: "library_books/june_paper_2-ab12cd34.pdf",
		Bytes:    2 * 1024 * 1024,
	}, nil)

	var inserted *model.Document
	mRepo.On("Create", ctx, mock.AnythingOfType("*model.Document")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*model.Document)
		}).
		Return(&model.Document{BookID: 42}, nil)

	stored, err := svc.Upload(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.BookID)
	require.NotNil(t, inserted)
	assert.Equal(t, "Combined Science", inserted.Subject)
	assert.True(t, inserted.IsPaper)
	// The free-text description keeps the raw subject, unnormalized.
	assert.Equal(t,
		"This is a science question paper for the ZIMSEC O Level June 2023 session ",
		inserted.Description)
	assert.Equal(t, "ZIMSEC", inserted.Author)
	assert.Equal(t, "June", inserted.ExaminationSeason)
	assert.Equal(t, "2023", inserted.Year)
	assert.Equal(t, "PDF", inserted.Format)
	assert.Equal(t, "june_paper_2", inserted.Title)
	assert.Equal(t, "june_paper_2.pdf", inserted.Filename)
	assert.Equal(t, "library_books/june_paper_2-ab12cd34.pdf", inserted.StoragePublicID)
	assert.Equal(t, 2.0, inserted.FileSizeMB)

	mStore.AssertExpectations(t)
	mRepo.AssertExpectations(t)
}

func TestLibraryService_Upload_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("author recorded", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		r := strings.NewReader("book bytes")
		in := &model.UploadInput{
			Subject:  "physics",
			Level:    "A Level",
			Kind:     model.KindBook,
			Author:   "T. Moyo",
			Filename: "mechanics notes.pdf",
			Size:     10,
			Reader:   r,
		}

		mStore.On("Upload", ctx, r, mock.Anything).
			Return(storage.UploadResult{URL: "u", PublicID: "p", Bytes: 512 * 1024}, nil)

		var inserted *model.Document
		mRepo.On("Create", ctx, mock.Anything).
			Run(func(args mock.Arguments) { inserted = args.Get(1).(*model.Document) }).
			Return(&model.Document{BookID: 1}, nil)

		_, err := svc.Upload(ctx, in)

		require.NoError(t, err)
		assert.Equal(t,
			"mechanics_notes.pdf is an A Level physics book written by T. Moyo ",
			inserted.Description)
		assert.False(t, inserted.IsPaper)
		assert.Equal(t, "Physics", inserted.Subject)
		assert.Equal(t, 0.5, inserted.FileSizeMB)
	})

	t.Run("missing author falls back", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		r := strings.NewReader("x")
		in := &model.UploadInput{
			Subject:  "history",
			Level:    "O Level",
			Kind:     model.KindBook,
			Author:   "   ",
			Filename: "notes",
			Size:     1,
			Reader:   r,
		}

		mStore.On("Upload", ctx, r, mock.Anything).
			Return(storage.UploadResult{URL: "u", PublicID: "p", Bytes: 1}, nil)

		var inserted *model.Document
		mRepo.On("Create", ctx, mock.Anything).
			Run(func(args mock.Arguments) { inserted = args.Get(1).(*model.Document) }).
			Return(&model.Document{BookID: 2}, nil)

		_, err := svc.Upload(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, UnknownAuthor, inserted.Author)
		assert.Contains(t, inserted.Description, "written by Unknown Author")
		assert.Equal(t, "PDF", inserted.Format, "no extension defaults the format")
	})
}

func TestLibraryService_Upload_Validation(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newService(mStore, mRepo)

	_, err := svc.Upload(ctx, nil)
	assert.ErrorIs(t, err, ErrReaderNil)

	_, err = svc.Upload(ctx, &model.UploadInput{Subject: "math", Level: "O Level"})
	assert.ErrorIs(t, err, ErrReaderNil)

	_, err = svc.Upload(ctx, &model.UploadInput{Level: "O Level", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Upload(ctx, &model.UploadInput{Subject: "math", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrMissingField)

	// Validation failures happen before any external call.
	mStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLibraryService_Upload_StorageFailure(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newService(mStore, mRepo)

	r := strings.NewReader("x")
	mStore.On("Upload", ctx, r, mock.Anything).
		Return(storage.UploadResult{}, errors.New("provider down"))

	_, err := svc.Upload(ctx, paperInput(r))

	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "provider down")
	// No partial metadata write.
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLibraryService_Upload_MetadataFailureLeavesAsset(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newService(mStore, mRepo)

	r := strings.NewReader("x")
	mStore.On("Upload", ctx, r, mock.Anything).
		Return(storage.UploadResult{URL: "u", PublicID: "library_books/x.pdf", Bytes: 1}, nil)
	mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))

	_, err := svc.Upload(ctx, paperInput(r))

	assert.ErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "insert failed")
	// The stored object is not rolled back.
	mStore.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func TestLibraryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("book with asset", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(3), false).
			Return(&model.Document{BookID: 3, Level: "O Level", Subject: "Physics", StoragePublicID: "library_books/p.pdf"}, nil)
		mStore.On("Destroy", ctx, "library_books/p.pdf").Return(nil)
		mRepo.On("Delete", ctx, int64(3), false).Return(nil)

		res, err := svc.Delete(ctx, 3)

		require.NoError(t, err)
		assert.False(t, res.IsPaper)
		assert.False(t, res.StorageSkipped)
		assert.False(t, res.StorageFailed)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("resolves paper when book lookup misses", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(4), false).Return(nil, sql.ErrNoRows)
		mRepo.On("FindByID", ctx, int64(4), true).
			Return(&model.Document{BookID: 4, IsPaper: true, StoragePublicID: "library_books/q.pdf"}, nil)
		mStore.On("Destroy", ctx, "library_books/q.pdf").Return(nil)
		mRepo.On("Delete", ctx, int64(4), true).Return(nil)

		res, err := svc.Delete(ctx, 4)

		require.NoError(t, err)
		assert.True(t, res.IsPaper)
	})

	t.Run("missing public id skips storage but still deletes metadata", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(5), false).
			Return(&model.Document{BookID: 5}, nil)
		mRepo.On("Delete", ctx, int64(5), false).Return(nil)

		res, err := svc.Delete(ctx, 5)

		require.NoError(t, err)
		assert.True(t, res.StorageSkipped)
		mStore.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
		mRepo.AssertExpectations(t)
	})

	t.Run("storage failure is non-fatal", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(6), false).
			Return(&model.Document{BookID: 6, StoragePublicID: "library_books/r.pdf"}, nil)
		mStore.On("Destroy", ctx, "library_books/r.pdf").Return(errors.New("provider error"))
		mRepo.On("Delete", ctx, int64(6), false).Return(nil)

		res, err := svc.Delete(ctx, 6)

		require.NoError(t, err)
		assert.True(t, res.StorageFailed)
		mRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(7), false).Return(nil, sql.ErrNoRows)
		mRepo.On("FindByID", ctx, int64(7), true).Return(nil, sql.ErrNoRows)

		_, err := svc.Delete(ctx, 7)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("metadata delete failure is the primary result", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(mStore, mRepo)

		mRepo.On("FindByID", ctx, int64(8), false).
			Return(&model.Document{BookID: 8, StoragePublicID: "library_books/s.pdf"}, nil)
		mStore.On("Destroy", ctx, "library_books/s.pdf").Return(nil)
		mRepo.On("Delete", ctx, int64(8), false).Return(errors.New("db fail"))

		_, err := svc.Delete(ctx, 8)

		assert.ErrorIs(t, err, ErrStore)
		assert.Contains(t, err.Error(), "db fail")
	})
}

func TestLibraryService_View(t *testing.T) {
	ctx := context.Background()

	t.Run("increments and returns the document", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindAnyByID", ctx, int64(1)).
			Return(&model.Document{BookID: 1, IsPaper: true, FilePath: "https://assets/x.pdf"}, nil)
		mRepo.On("IncrementViews", ctx, int64(1), true).Return(nil)

		doc, err := svc.View(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "https://assets/x.pdf", doc.FilePath)
		mRepo.AssertExpectations(t)
	})

	t.Run("counter failure still yields the redirect target", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindAnyByID", ctx, int64(2)).
			Return(&model.Document{BookID: 2, FilePath: "https://assets/y.pdf"}, nil)
		mRepo.On("IncrementViews", ctx, int64(2), false).Return(errors.New("update failed"))

		doc, err := svc.View(ctx, 2)

		require.NoError(t, err)
		assert.NotNil(t, doc)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindAnyByID", ctx, int64(3)).Return(nil, sql.ErrNoRows)

		_, err := svc.View(ctx, 3)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no storage url", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindAnyByID", ctx, int64(4)).Return(&model.Document{BookID: 4}, nil)

		_, err := svc.View(ctx, 4)

		assert.ErrorIs(t, err, ErrNoFilePath)
		mRepo.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLibraryService_Download(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/asset.pdf" {
			w.Write([]byte("pdf-content"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	t.Run("fetch success increments the counter", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindByID", ctx, int64(1), false).
			Return(&model.Document{BookID: 1, Filename: "notes.pdf", FilePath: srv.URL + "/asset.pdf"}, nil)
		mRepo.On("IncrementDownloads", ctx, int64(1), false).Return(nil)

		res, err := svc.Download(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, []byte("pdf-content"), res.Data)
		assert.Equal(t, "notes.pdf", res.Filename)
		mRepo.AssertExpectations(t)
	})

	t.Run("fetch failure leaves the counter untouched", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindByID", ctx, int64(2), false).
			Return(&model.Document{BookID: 2, FilePath: srv.URL + "/gone.pdf"}, nil)

		_, err := svc.Download(ctx, 2)

		assert.ErrorIs(t, err, ErrStorage)
		mRepo.AssertNotCalled(t, "IncrementDownloads", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paper resolved after book miss", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindByID", ctx, int64(3), false).Return(nil, sql.ErrNoRows)
		mRepo.On("FindByID", ctx, int64(3), true).
			Return(&model.Document{BookID: 3, IsPaper: true, Filename: "paper.pdf", FilePath: srv.URL + "/asset.pdf"}, nil)
		mRepo.On("IncrementDownloads", ctx, int64(3), true).Return(nil)

		res, err := svc.Download(ctx, 3)

		require.NoError(t, err)
		assert.True(t, res.Document.IsPaper)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		svc := newService(new(storeMocks.MockStorage), mRepo)

		mRepo.On("FindByID", ctx, int64(4), false).Return(nil, sql.ErrNoRows)
		mRepo.On("FindByID", ctx, int64(4), true).Return(nil, sql.ErrNoRows)

		_, err := svc.Download(ctx, 4)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLibraryService_Dashboard(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newService(new(storeMocks.MockStorage), mRepo)

	stats := &repository.DashboardStats{TotalBooks: 3, PaperViews: 9}
	mRepo.On("DashboardStats", ctx).Return(stats, nil)
	mRepo.On("CountByLevelSubject", ctx, false).Return(map[string]int{"O Level_Physics": 2}, nil)
	mRepo.On("CountByLevelSubject", ctx, true).Return(map[string]int{"O Level_Physics": 1}, nil)

	data, err := svc.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, stats, data.Stats)
	assert.Equal(t, 2, data.BookCounts["O Level_Physics"])
	assert.Equal(t, 1, data.PaperCounts["O Level_Physics"])
	assert.NotEmpty(t, data.SubjectEmojis)
}

func TestLibraryService_ShareLink(t *testing.T) {
	svc := newService(new(storeMocks.MockStorage), new(repoMocks.MockDocumentRepository))

	t.Run("broadcast", func(t *testing.T) {
		link := svc.ShareLink("O Level", "physics", "https://library.example.com/", "")

		assert.True(t, strings.HasPrefix(link, "https://wa.me/?text="))
		assert.Contains(t, link, "Physics")
		// The listing URL must survive the query encoding.
		assert.Contains(t, link, "library.example.com%2Fbooks%2FO%2520Level%2Fphysics")
	})

	t.Run("addressed to a normalized recipient", func(t *testing.T) {
		link := svc.ShareLink("O Level", "physics", "https://library.example.com/", "0771234567")

		assert.True(t, strings.HasPrefix(link, "https://wa.me/263771234567?text="))
	})

	t.Run("invalid phone falls back to broadcast", func(t *testing.T) {
		link := svc.ShareLink("O Level", "physics", "https://library.example.com/", "12")

		assert.True(t, strings.HasPrefix(link, "https://wa.me/?text="))
	})
}

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, 0.0, bytesToMB(0))
	assert.Equal(t, 1.0, bytesToMB(1024*1024))
	assert.Equal(t, 2.5, bytesToMB(5*1024*1024/2))
	assert.Equal(t, 0.1, bytesToMB(104858)) // ~0.1 MB rounds to two decimals
}
