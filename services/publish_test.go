package services

import (
	"testing"
	"time"

	"github.com/camden-git/photocmsbackend/events"
	"github.com/camden-git/photocmsbackend/models"
)

type recordingStore struct {
	writes []bool
	err    error
}

func (s *recordingStore) SetPublished(photoID uint, published bool) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, published)
	return nil
}

type recordingDispatcher struct {
	signals []events.Signal
}

func (d *recordingDispatcher) Dispatch(signal events.Signal, photoID uint, publicID string) {
	d.signals = append(d.signals, signal)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestUpdatePublishedTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		stored      bool
		hidden      bool
		publishDate int64
		wantChanged bool
		wantSignal  events.Signal
	}{
		{"publishes when date passed", false, false, now.Unix() - 10, true, events.PhotoPublished},
		{"unpublishes when hidden", true, true, now.Unix() - 10, true, events.PhotoUnpublished},
		{"unpublishes on future date", true, false, now.Unix() + 10, true, events.PhotoUnpublished},
		{"no change while unpublished", false, false, now.Unix() + 10, false, ""},
		{"no change while published", true, false, now.Unix() - 10, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			dispatcher := &recordingDispatcher{}
			pub := NewPublisher(store, dispatcher).WithClock(fixedClock(now))

			photo := &models.Photo{ID: 1, PublicID: "uuid-1", Hidden: tt.hidden, PublishDate: tt.publishDate, Published: tt.stored}
			changed, err := pub.UpdatePublished(photo, PublishOptions{DispatchSignals: true, UpdateModel: true})
			if err != nil {
				t.Fatalf("UpdatePublished: %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}

			if !tt.wantChanged {
				if len(store.writes) != 0 || len(dispatcher.signals) != 0 {
					t.Errorf("no-op must not write (%d) or signal (%d)", len(store.writes), len(dispatcher.signals))
				}
				return
			}
			if len(dispatcher.signals) != 1 || dispatcher.signals[0] != tt.wantSignal {
				t.Errorf("signals = %v, want exactly [%s]", dispatcher.signals, tt.wantSignal)
			}
			if len(store.writes) != 1 {
				t.Errorf("writes = %d, want 1", len(store.writes))
			}
		})
	}
}

func TestUpdatePublishedIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &recordingStore{}
	dispatcher := &recordingDispatcher{}
	pub := NewPublisher(store, dispatcher).WithClock(fixedClock(now))

	photo := &models.Photo{ID: 7, PublicID: "uuid-7", PublishDate: now.Unix() - 1}

	changed, err := pub.UpdatePublished(photo, PublishOptions{DispatchSignals: true, UpdateModel: true})
	if err != nil || !changed {
		t.Fatalf("first call: changed=%v err=%v", changed, err)
	}

	// second call with no intervening change: no write, no signal
	changed, err = pub.UpdatePublished(photo, PublishOptions{DispatchSignals: true, UpdateModel: true})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if changed {
		t.Error("second call must report no change")
	}
	if len(store.writes) != 1 {
		t.Errorf("writes = %d, want 1", len(store.writes))
	}
	if len(dispatcher.signals) != 1 {
		t.Errorf("signals = %d, want 1", len(dispatcher.signals))
	}
}

func TestUpdatePublishedBoundaryInclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(&recordingStore{}, nil).WithClock(fixedClock(now))

	photo := &models.Photo{ID: 2, PublishDate: now.Unix()}
	changed, err := pub.UpdatePublished(photo, PublishOptions{})
	if err != nil {
		t.Fatalf("UpdatePublished: %v", err)
	}
	if !changed || !photo.Published {
		t.Error("publish_date == now must publish")
	}
}

func TestNotifyDeleted(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	pub := NewPublisher(&recordingStore{}, dispatcher)

	pub.NotifyDeleted(&models.Photo{ID: 3, PublicID: "uuid-3", Published: true})
	if len(dispatcher.signals) != 1 || dispatcher.signals[0] != events.PhotoUnpublished {
		t.Errorf("signals = %v, want [photo_unpublished]", dispatcher.signals)
	}

	pub.NotifyDeleted(&models.Photo{ID: 4, PublicID: "uuid-4", Published: false})
	if len(dispatcher.signals) != 1 {
		t.Error("unpublished photo deletion must not signal")
	}
}
