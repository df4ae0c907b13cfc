package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/photocmsbackend/config"
	"github.com/camden-git/photocmsbackend/database"
	"github.com/camden-git/photocmsbackend/events"
	"github.com/camden-git/photocmsbackend/handlers"
	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/repository"
	"github.com/camden-git/photocmsbackend/services"
	"github.com/camden-git/photocmsbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.RawPhotosPath, cfg.ResizedPhotosPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	if err := database.SeedBuiltinSizes(db); err != nil {
		log.Fatalf("FATAL: Failed to seed builtin sizes: %v", err)
	}
	if err := database.SeedAPIKey(db, cfg.BootstrapAPIKey); err != nil {
		log.Fatalf("FATAL: Failed to seed bootstrap API key: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeRaw:     cfg.RawPhotosSubDir,
		media.AssetTypeResized: cfg.ResizedPhotosSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore, cfg.JpegQuality)

	photoRepo := repository.NewPhotoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	tagRepo := repository.NewTagRepository(db)
	sizeRepo := repository.NewSizeRepository(db)
	psRepo := repository.NewPhotoSizeRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)

	hub := events.NewHub()
	go hub.Run()

	publisher := services.NewPublisher(photoRepo, hub)

	log.Printf("Initializing task worker pool (Workers: %d, Queue Size: %d)...", cfg.NumWorkers, cfg.JobQueueSize)
	taskProcessor := workers.NewTaskProcessor(cfg, photoRepo, sizeRepo, psRepo, mediaStore, mediaProcessor, publisher)
	taskProcessor.StartSchedulers()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing originals in: %s", cfg.RawPhotosPath)
	log.Printf("Storing renditions in: %s", cfg.ResizedPhotosPath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	publicHandler := &handlers.PublicHandler{
		PhotoRepo: photoRepo,
		AlbumRepo: albumRepo,
		TagRepo:   tagRepo,
		SizeRepo:  sizeRepo,
		PSRepo:    psRepo,
		Store:     mediaStore,
		DB:        db,
	}
	adminPhotoHandler := &handlers.AdminPhotoHandler{
		PhotoRepo: photoRepo,
		TagRepo:   tagRepo,
		AlbumRepo: albumRepo,
		PSRepo:    psRepo,
		Store:     mediaStore,
		Tasks:     taskProcessor,
		Publisher: publisher,
	}
	adminAlbumHandler := &handlers.AdminAlbumHandler{AlbumRepo: albumRepo}
	adminTagHandler := &handlers.AdminTagHandler{TagRepo: tagRepo}
	adminSizeHandler := &handlers.AdminSizeHandler{SizeRepo: sizeRepo, PSRepo: psRepo, Tasks: taskProcessor}
	adminSystemHandler := &handlers.AdminSystemHandler{Tasks: taskProcessor}

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Use(handlers.APIKeyAuth(keyRepo))

			r.Route("/photos", func(r chi.Router) {
				r.Get("/", publicHandler.ListPhotos)
				r.Route("/{photoUUID}", func(r chi.Router) {
					r.Get("/", publicHandler.GetPhoto)
					r.Get("/image/{sizeSlug}", publicHandler.GetPhotoImage)
				})
			})
			r.Route("/albums", func(r chi.Router) {
				r.Get("/", publicHandler.ListAlbums)
				r.Get("/{albumUUID}", publicHandler.GetAlbum)
			})
			r.Route("/tags", func(r chi.Router) {
				r.Get("/", publicHandler.ListTags)
				r.Get("/{tagUUID}", publicHandler.GetTag)
			})
			r.Get("/sizes", publicHandler.ListSizes)
			r.Get("/sizes/{sizeSlug}", publicHandler.GetSize)
			r.Get("/health", publicHandler.Health)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/photos", func(r chi.Router) {
				r.Post("/", adminPhotoHandler.Upload)
				r.Get("/", adminPhotoHandler.List)
				r.Route("/{photoUUID}", func(r chi.Router) {
					r.Get("/", adminPhotoHandler.Get)
					r.Put("/", adminPhotoHandler.Update)
					r.Delete("/", adminPhotoHandler.Delete)
				})
			})
			r.Route("/albums", func(r chi.Router) {
				r.Post("/", adminAlbumHandler.Create)
				r.Get("/", adminAlbumHandler.List)
				r.Route("/{albumUUID}", func(r chi.Router) {
					r.Get("/", adminAlbumHandler.Get)
					r.Put("/", adminAlbumHandler.Update)
					r.Delete("/", adminAlbumHandler.Delete)
				})
			})
			r.Route("/tags", func(r chi.Router) {
				r.Post("/", adminTagHandler.Create)
				r.Get("/", adminTagHandler.List)
				r.Route("/{tagUUID}", func(r chi.Router) {
					r.Put("/", adminTagHandler.Rename)
					r.Delete("/", adminTagHandler.Delete)
				})
			})
			r.Route("/sizes", func(r chi.Router) {
				r.Post("/", adminSizeHandler.Create)
				r.Get("/", adminSizeHandler.List)
				r.Route("/{sizeUUID}", func(r chi.Router) {
					r.Get("/", adminSizeHandler.Get)
					r.Put("/", adminSizeHandler.Update)
					r.Delete("/", adminSizeHandler.Delete)
				})
			})
			r.Route("/sweeps", func(r chi.Router) {
				r.Post("/consistency", adminSystemHandler.RunConsistencySweep)
				r.Post("/publish", adminSystemHandler.RunPublishSweep)
			})
		})

		r.Get("/events", hub.ServeWS)
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
