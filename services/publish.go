// Package services holds the publish-state engine: the transition logic
// between a photo's stored visibility flag and its derivable value.
package services

import (
	"fmt"
	"time"

	"github.com/camden-git/photocmsbackend/events"
	"github.com/camden-git/photocmsbackend/models"
)

// PublishOptions controls the side effects of a recompute.
type PublishOptions struct {
	// DispatchSignals emits photo_published/photo_unpublished on change.
	DispatchSignals bool
	// UpdateModel persists the recalculated flag (single column write).
	UpdateModel bool
}

// PublishedFlagStore persists the computed flag without triggering any
// further recomputation.
type PublishedFlagStore interface {
	SetPublished(photoID uint, published bool) error
}

// Publisher recomputes and transitions photo publish state.
type Publisher struct {
	store      PublishedFlagStore
	dispatcher events.Dispatcher
	now        func() time.Time
}

func NewPublisher(store PublishedFlagStore, dispatcher events.Dispatcher) *Publisher {
	return &Publisher{store: store, dispatcher: dispatcher, now: time.Now}
}

// WithClock overrides the time source. Intended for tests and the
// publish sweep's consistent per-batch timestamp.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	clone := *p
	clone.now = now
	return &clone
}

// UpdatePublished compares the freshly calculated visibility against the
// photo's stored flag. When they differ it updates the in-memory flag,
// optionally emits exactly one signal chosen by the new state, and
// optionally persists the flag. When nothing changed it is a strict
// no-op: no write and no signal, regardless of the options.
func (p *Publisher) UpdatePublished(photo *models.Photo, opts PublishOptions) (bool, error) {
	old := photo.Published
	calculated := photo.CalculatePublished(p.now())
	changed := calculated != old
	photo.Published = calculated

	if !changed {
		return false, nil
	}

	if opts.DispatchSignals && p.dispatcher != nil {
		signal := events.PhotoUnpublished
		if calculated {
			signal = events.PhotoPublished
		}
		p.dispatcher.Dispatch(signal, photo.ID, photo.PublicID)
	}

	if opts.UpdateModel {
		if err := p.store.SetPublished(photo.ID, calculated); err != nil {
			return true, fmt.Errorf("failed to persist published flag for photo %d: %w", photo.ID, err)
		}
	}

	return true, nil
}

// RecordPhotoMutation is the recompute every mutation path must call:
// dispatch and persistence are never skipped on a save-triggered
// recompute.
func (p *Publisher) RecordPhotoMutation(photo *models.Photo) (bool, error) {
	return p.UpdatePublished(photo, PublishOptions{DispatchSignals: true, UpdateModel: true})
}

// NotifyDeleted fires the unpublish signal for a photo that is about to
// be removed, but only if it was published. No model write happens; the
// row is going away.
func (p *Publisher) NotifyDeleted(photo *models.Photo) {
	if photo.Published && p.dispatcher != nil {
		p.dispatcher.Dispatch(events.PhotoUnpublished, photo.ID, photo.PublicID)
	}
}
