package workers

import (
	"fmt"
	"log"
	"time"

	"github.com/camden-git/photocmsbackend/media"
)

// RunConsistencySweep walks the derived-asset state and repairs every
// divergence it finds: broken rendition records are dropped, orphaned
// files are removed, and missing work is re-queued. Returns the number
// of issues acted on. Safe to run at any time, including concurrently
// with uploads; every correction is something the workers would redo
// anyway.
func (tp *TaskProcessor) RunConsistencySweep() (int, error) {
	issues := 0

	records, err := tp.psRepo.ListAll()
	if err != nil {
		return 0, fmt.Errorf("consistency sweep: %w", err)
	}

	referenced := make(map[string]bool)
	needsRegen := make(map[uint]bool)

	// pass 1: rendition records that are incomplete or whose file is gone
	for i := range records {
		rec := &records[i]
		broken := !rec.IsComplete() || !tp.store.Exists(rec.ImagePath)
		if !broken {
			referenced[rec.ImagePath] = true
			continue
		}

		issues++
		log.Printf("Sweep: dropping broken rendition record %d (photo %d, size %d)", rec.ID, rec.PhotoID, rec.SizeID)
		if err := tp.psRepo.Delete(rec.ID); err != nil {
			log.Printf("Sweep: ERROR deleting rendition record %d: %v", rec.ID, err)
			continue
		}
		if rec.ImagePath != "" && tp.store.Exists(rec.ImagePath) {
			if err := tp.store.Delete(rec.ImagePath); err != nil {
				log.Printf("Sweep: ERROR deleting file %s: %v", rec.ImagePath, err)
			}
		}
		needsRegen[rec.PhotoID] = true
	}

	// pass 2: derived files nothing references
	strays, err := tp.store.List(media.AssetTypeResized)
	if err != nil {
		log.Printf("Sweep: ERROR listing derived files: %v", err)
	} else {
		for _, path := range strays {
			if referenced[path] {
				continue
			}
			issues++
			log.Printf("Sweep: removing stray derived file %s", path)
			if err := tp.store.Delete(path); err != nil {
				log.Printf("Sweep: ERROR deleting stray file %s: %v", path, err)
			}
		}
	}

	// pass 3: photos with missing renditions or metadata
	sizeCount, err := tp.sizeRepo.Count()
	if err != nil {
		return issues, fmt.Errorf("consistency sweep: %w", err)
	}
	photos, err := tp.photoRepo.ListAll()
	if err != nil {
		return issues, fmt.Errorf("consistency sweep: %w", err)
	}
	for i := range photos {
		photo := &photos[i]
		if !tp.store.Exists(photo.RawImagePath) {
			issues++
			log.Printf("Sweep: WARNING photo %d original %s is missing, cannot regenerate", photo.ID, photo.RawImagePath)
			continue
		}
		if needsRegen[photo.ID] {
			tp.QueueTask(Task{Type: TaskGenerateSizes, PhotoID: photo.ID})
			continue
		}
		count, err := tp.psRepo.CountByPhoto(photo.ID)
		if err != nil {
			log.Printf("Sweep: ERROR counting renditions for photo %d: %v", photo.ID, err)
			continue
		}
		if count < sizeCount {
			issues++
			tp.QueueTask(Task{Type: TaskGenerateSizes, PhotoID: photo.ID})
		}
	}

	missing, err := tp.photoRepo.ListMissingMetadata()
	if err != nil {
		return issues, fmt.Errorf("consistency sweep: %w", err)
	}
	for i := range missing {
		issues++
		tp.QueueTask(Task{Type: TaskExtractMetadata, PhotoID: missing[i].ID})
	}

	if issues > 0 {
		log.Printf("Consistency sweep finished: %d issue(s) corrected", issues)
	}
	return issues, nil
}

// RunPublishSweep recomputes the published flag for every photo against
// a single batch timestamp. A photo crossing into visibility is held
// back until all of its renditions exist, so nothing is ever announced
// before it can be served; unpublishing is never held back. Returns the
// number of photos whose flag changed.
func (tp *TaskProcessor) RunPublishSweep() (int, error) {
	now := time.Now()
	pub := tp.publisher.WithClock(func() time.Time { return now })

	sizeCount, err := tp.sizeRepo.Count()
	if err != nil {
		return 0, fmt.Errorf("publish sweep: %w", err)
	}

	photos, err := tp.photoRepo.ListAll()
	if err != nil {
		return 0, fmt.Errorf("publish sweep: %w", err)
	}

	changed := 0
	for i := range photos {
		photo := &photos[i]
		if photo.CalculatePublished(now) && !photo.Published {
			count, err := tp.psRepo.CountByPhoto(photo.ID)
			if err != nil {
				log.Printf("Publish sweep: ERROR counting renditions for photo %d: %v", photo.ID, err)
				continue
			}
			if count < sizeCount {
				tp.QueueTask(Task{Type: TaskGenerateSizes, PhotoID: photo.ID})
				continue
			}
		}

		didChange, err := pub.RecordPhotoMutation(photo)
		if err != nil {
			log.Printf("Publish sweep: ERROR updating photo %d: %v", photo.ID, err)
			continue
		}
		if didChange {
			changed++
		}
	}

	if changed > 0 {
		log.Printf("Publish sweep finished: %d photo(s) transitioned", changed)
	}
	return changed, nil
}

// StartSchedulers runs both sweeps on their configured intervals until
// the processor is stopped. The publish sweep also runs once
// immediately so a restart catches up on missed transitions.
func (tp *TaskProcessor) StartSchedulers() {
	go func() {
		if _, err := tp.RunPublishSweep(); err != nil {
			log.Printf("Initial publish sweep failed: %v", err)
		}

		publishTicker := time.NewTicker(tp.Config.PublishInterval)
		consistencyTicker := time.NewTicker(tp.Config.ConsistencyInterval)
		defer publishTicker.Stop()
		defer consistencyTicker.Stop()

		for {
			select {
			case <-publishTicker.C:
				if _, err := tp.RunPublishSweep(); err != nil {
					log.Printf("Publish sweep failed: %v", err)
				}
			case <-consistencyTicker.C:
				if _, err := tp.RunConsistencySweep(); err != nil {
					log.Printf("Consistency sweep failed: %v", err)
				}
			case <-tp.StopChan:
				return
			}
		}
	}()
}
