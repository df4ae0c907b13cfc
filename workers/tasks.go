package workers

import (
	"fmt"
	"log"

	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
)

// processPhotoPipeline runs the full post-upload sequence for one photo:
// extract metadata, generate every missing rendition, then recompute the
// publish flag. Each step is idempotent, so a redelivered pipeline task
// converges instead of duplicating work.
func (tp *TaskProcessor) processPhotoPipeline(photoID uint) error {
	if err := tp.processExtractMetadata(photoID); err != nil {
		log.Printf("Pipeline: metadata step failed for photo %d: %v", photoID, err)
	}
	if err := tp.processGenerateSizes(photoID); err != nil {
		return err
	}

	photo, err := tp.photoRepo.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to reload photo %d: %w", photoID, err)
	}
	if _, err := tp.publisher.RecordPhotoMutation(photo); err != nil {
		return err
	}
	return nil
}

// processGenerateSizes produces every registered rendition the photo
// does not have yet.
func (tp *TaskProcessor) processGenerateSizes(photoID uint) error {
	photo, err := tp.photoRepo.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo %d: %w", photoID, err)
	}

	sizes, err := tp.sizeRepo.ListAll()
	if err != nil {
		return err
	}

	var firstErr error
	for i := range sizes {
		if err := tp.generateOne(photo, &sizes[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// processGenerateForSize fans one size out across every photo. Queued
// when a size is created or its dimensions change.
func (tp *TaskProcessor) processGenerateForSize(sizeID uint) error {
	size, err := tp.sizeRepo.GetByID(sizeID)
	if err != nil {
		return fmt.Errorf("failed to load size %d: %w", sizeID, err)
	}

	photos, err := tp.photoRepo.ListAll()
	if err != nil {
		return err
	}

	var firstErr error
	for i := range photos {
		if err := tp.generateOne(&photos[i], size); err != nil {
			log.Printf("Worker: ERROR generating %s for photo %d: %v", size.Slug, photos[i].ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// generateOne produces a single rendition if its record is missing.
// A losing race on the record insert removes the freshly written file so
// no stray artifact is left behind.
func (tp *TaskProcessor) generateOne(photo *models.Photo, size *models.Size) error {
	exists, err := tp.psRepo.Exists(photo.ID, size.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	generated, err := tp.processor.GenerateSize(photo.RawImagePath, photo.Title, media.SizeSpec{
		Slug:         size.Slug,
		MaxDimension: size.MaxDimension,
		SquareCrop:   size.SquareCrop,
	})
	if err != nil {
		return fmt.Errorf("failed to generate %s for photo %d: %w", size.Slug, photo.ID, err)
	}

	record := &models.PhotoSize{
		PhotoID:   photo.ID,
		SizeID:    size.ID,
		ImagePath: generated.RelativePath,
		Width:     &generated.Width,
		Height:    &generated.Height,
		MD5:       &generated.MD5,
	}
	if err := tp.psRepo.Create(record); err != nil {
		if repository.IsUniqueConstraintError(err) {
			if delErr := tp.store.Delete(generated.RelativePath); delErr != nil {
				log.Printf("Worker: failed to clean up duplicate rendition %s: %v", generated.RelativePath, delErr)
			}
			return nil
		}
		return err
	}
	return nil
}

// processExtractMetadata re-reads the original file's metadata and
// overwrites the stored record. GPS readings backfill the photo's
// coordinates, but only once: a photo whose coordinates were ever set
// (by an operator or a previous backfill) is left alone.
func (tp *TaskProcessor) processExtractMetadata(photoID uint) error {
	photo, err := tp.photoRepo.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo %d: %w", photoID, err)
	}

	fullPath, err := tp.store.GetFullPath(photo.RawImagePath)
	if err != nil {
		return fmt.Errorf("failed to resolve original for photo %d: %w", photoID, err)
	}

	extracted, err := media.ExtractMetadata(fullPath)
	if err != nil {
		return fmt.Errorf("failed to extract metadata for photo %d: %w", photoID, err)
	}

	if err := tp.photoRepo.UpsertMetadata(photoID, extracted); err != nil {
		return err
	}

	if photo.Latitude == nil && photo.Longitude == nil &&
		extracted.Latitude != nil && extracted.Longitude != nil {
		if err := tp.photoRepo.SetLocation(photoID, *extracted.Latitude, *extracted.Longitude); err != nil {
			return err
		}
		log.Printf("Worker: backfilled location for photo %d from its metadata", photoID)
	}
	return nil
}

// processDeleteFiles removes storage files best-effort. A path that is
// already gone is success, any other failure is logged and skipped so
// one stuck file never blocks the rest.
func (tp *TaskProcessor) processDeleteFiles(paths []string) {
	for _, path := range paths {
		if err := tp.store.Delete(path); err != nil {
			log.Printf("Worker: ERROR deleting file %s: %v", path, err)
		}
	}
}
