package handlers

import (
	"bytes"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photocmsbackend/config"
	"github.com/camden-git/photocmsbackend/database"
	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
	"github.com/camden-git/photocmsbackend/services"
	"github.com/camden-git/photocmsbackend/workers"
)

const testAPIKey = "test-api-key-secret"

type testServer struct {
	router    chi.Router
	db        *gorm.DB
	store     media.Store
	photoRepo *repository.PhotoRepository
	albumRepo *repository.AlbumRepository
	tagRepo   *repository.TagRepository
	sizeRepo  *repository.SizeRepository
	psRepo    *repository.PhotoSizeRepository
	tasks     *workers.TaskProcessor
	publisher *services.Publisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	require.NoError(t, database.SeedBuiltinSizes(db))
	require.NoError(t, database.SeedAPIKey(db, testAPIKey))

	store, err := media.NewLocalStorage(filepath.Join(dir, "media"), map[media.AssetType]string{
		media.AssetTypeRaw:     config.DefaultRawPhotosSubDir,
		media.AssetTypeResized: config.DefaultResizedPhotosSubDir,
	})
	require.NoError(t, err)
	_, err = store.EnsureDir(media.AssetTypeRaw)
	require.NoError(t, err)
	_, err = store.EnsureDir(media.AssetTypeResized)
	require.NoError(t, err)

	photoRepo := repository.NewPhotoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	tagRepo := repository.NewTagRepository(db)
	sizeRepo := repository.NewSizeRepository(db)
	psRepo := repository.NewPhotoSizeRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)

	publisher := services.NewPublisher(photoRepo, nil)
	processor := media.NewProcessor(store, 90)

	cfg := config.Config{JobQueueSize: 50, NumWorkers: 1}
	tasks := workers.NewTaskProcessor(cfg, photoRepo, sizeRepo, psRepo, store, processor, publisher)
	t.Cleanup(tasks.Stop)

	publicHandler := &PublicHandler{
		PhotoRepo: photoRepo,
		AlbumRepo: albumRepo,
		TagRepo:   tagRepo,
		SizeRepo:  sizeRepo,
		PSRepo:    psRepo,
		Store:     store,
		DB:        db,
	}
	adminPhotoHandler := &AdminPhotoHandler{
		PhotoRepo: photoRepo,
		TagRepo:   tagRepo,
		AlbumRepo: albumRepo,
		PSRepo:    psRepo,
		Store:     store,
		Tasks:     tasks,
		Publisher: publisher,
	}
	adminAlbumHandler := &AdminAlbumHandler{AlbumRepo: albumRepo}
	adminTagHandler := &AdminTagHandler{TagRepo: tagRepo}
	adminSizeHandler := &AdminSizeHandler{SizeRepo: sizeRepo, PSRepo: psRepo, Tasks: tasks}

	r := chi.NewRouter()
	r.Route("/api/public", func(r chi.Router) {
		r.Use(APIKeyAuth(keyRepo))
		r.Get("/photos", publicHandler.ListPhotos)
		r.Route("/photos/{photoUUID}", func(r chi.Router) {
			r.Get("/", publicHandler.GetPhoto)
			r.Get("/image/{sizeSlug}", publicHandler.GetPhotoImage)
		})
		r.Get("/albums", publicHandler.ListAlbums)
		r.Get("/albums/{albumUUID}", publicHandler.GetAlbum)
		r.Get("/tags", publicHandler.ListTags)
		r.Get("/tags/{tagUUID}", publicHandler.GetTag)
		r.Get("/sizes", publicHandler.ListSizes)
		r.Get("/sizes/{sizeSlug}", publicHandler.GetSize)
		r.Get("/health", publicHandler.Health)
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/photos", adminPhotoHandler.Upload)
		r.Get("/photos", adminPhotoHandler.List)
		r.Route("/photos/{photoUUID}", func(r chi.Router) {
			r.Get("/", adminPhotoHandler.Get)
			r.Put("/", adminPhotoHandler.Update)
			r.Delete("/", adminPhotoHandler.Delete)
		})
		r.Post("/albums", adminAlbumHandler.Create)
		r.Post("/tags", adminTagHandler.Create)
		r.Put("/tags/{tagUUID}", adminTagHandler.Rename)
		r.Post("/sizes", adminSizeHandler.Create)
		r.Route("/sizes/{sizeUUID}", func(r chi.Router) {
			r.Put("/", adminSizeHandler.Update)
			r.Delete("/", adminSizeHandler.Delete)
		})
	})

	return &testServer{
		router:    r,
		db:        db,
		store:     store,
		photoRepo: photoRepo,
		albumRepo: albumRepo,
		tagRepo:   tagRepo,
		sizeRepo:  sizeRepo,
		psRepo:    psRepo,
		tasks:     tasks,
		publisher: publisher,
	}
}

// request performs a routed request with the test API key attached.
func (ts *testServer) request(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// seedPhoto inserts a photo row with a real JPEG original behind it.
func (ts *testServer) seedPhoto(t *testing.T, title string, published bool) *models.Photo {
	t.Helper()

	img := imaging.New(320, 240, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	relPath, err := ts.store.Save(media.AssetTypeRaw, title+".jpg", &buf)
	require.NoError(t, err)

	photo := &models.Photo{Title: title, RawImagePath: relPath}
	require.NoError(t, ts.photoRepo.Create(photo))
	if published {
		require.NoError(t, ts.photoRepo.SetPublished(photo.ID, true))
		photo.Published = true
	}
	return photo
}
