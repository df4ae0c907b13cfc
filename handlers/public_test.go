package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
)

func TestPublicAPIRequiresKey(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/photos", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/public/photos", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/public/photos", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPhotosOnlyPublished(t *testing.T) {
	ts := newTestServer(t)
	pub := ts.seedPhoto(t, "visible", true)
	ts.seedPhoto(t, "draft", false)

	rec := ts.request(t, http.MethodGet, "/api/public/photos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var photos []PhotoSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, pub.PublicID, photos[0].UUID)
}

func TestListPhotosLocationFilterValidation(t *testing.T) {
	ts := newTestServer(t)

	// half a pair is a validation failure
	rec := ts.request(t, http.MethodGet, "/api/public/photos?latitude_lower_bound=40", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "latitude_lower_bound")

	rec = ts.request(t, http.MethodGet, "/api/public/photos?longitude_lower_bound=abc&longitude_upper_bound=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPhotosLocationFilterHidesLocations(t *testing.T) {
	ts := newTestServer(t)

	lat, lon := 40.0, -74.0
	visible := ts.seedPhoto(t, "located", true)
	visible.Latitude = &lat
	visible.Longitude = &lon
	require.NoError(t, ts.photoRepo.Update(visible))

	hidden := ts.seedPhoto(t, "secret spot", true)
	hidden.Latitude = &lat
	hidden.Longitude = &lon
	hidden.HideLocation = true
	require.NoError(t, ts.photoRepo.Update(hidden))

	rec := ts.request(t, http.MethodGet, "/api/public/photos?latitude_lower_bound=39&latitude_upper_bound=41&longitude_lower_bound=-75&longitude_upper_bound=-73", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var photos []PhotoSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, visible.PublicID, photos[0].UUID)

	// the hidden-location photo still lists without a filter, minus coordinates
	rec = ts.request(t, http.MethodGet, "/api/public/photos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 2)
	for _, p := range photos {
		if p.UUID == hidden.PublicID {
			assert.Nil(t, p.Latitude)
			assert.Nil(t, p.Longitude)
		}
	}
}

func TestGetPhotoNotFoundForDrafts(t *testing.T) {
	ts := newTestServer(t)
	draft := ts.seedPhoto(t, "draft", false)

	rec := ts.request(t, http.MethodGet, "/api/public/photos/"+draft.PublicID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/public/photos/no-such-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPhotoDetail(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "detailed", true)

	tag := &models.Tag{Name: "Snapshots"}
	require.NoError(t, ts.tagRepo.Create(tag))
	require.NoError(t, ts.photoRepo.AssignTags(photo.ID, []uint{tag.ID}))

	album := &models.Album{Title: "Holiday"}
	require.NoError(t, ts.albumRepo.Create(album))
	require.NoError(t, ts.photoRepo.AssignAlbums(photo.ID, []uint{album.ID}))

	lat, lon := 40.0, -74.0
	photo.Latitude = &lat
	photo.Longitude = &lon
	require.NoError(t, ts.photoRepo.Update(photo))

	rec := ts.request(t, http.MethodGet, "/api/public/photos/"+photo.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail PhotoDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, photo.PublicID, detail.UUID)
	assert.NotNil(t, detail.CustomAttributes)

	// tags and albums are summaries keyed by uuid, never bare names or ids
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, tag.PublicID, detail.Tags[0].UUID)
	assert.Equal(t, "snapshots", detail.Tags[0].Name)
	require.Len(t, detail.Albums, 1)
	assert.Equal(t, album.PublicID, detail.Albums[0].UUID)
	assert.Equal(t, "holiday", detail.Albums[0].Slug)
	assert.Equal(t, "Holiday", detail.Albums[0].Title)

	require.NotNil(t, detail.Location)
	assert.Equal(t, lat, detail.Location.Latitude)
	assert.Equal(t, lon, detail.Location.Longitude)
}

func TestGetPhotoDetailHidesLocation(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "secret spot", true)

	lat, lon := 40.0, -74.0
	photo.Latitude = &lat
	photo.Longitude = &lon
	photo.HideLocation = true
	require.NoError(t, ts.photoRepo.Update(photo))

	rec := ts.request(t, http.MethodGet, "/api/public/photos/"+photo.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail PhotoDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Nil(t, detail.Location)
}

func TestGetPhotoImage(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "servable", true)

	// store a rendition record by hand so the response is deterministic
	payload := []byte("jpeg-bytes")
	relPath, err := ts.store.Save(media.AssetTypeResized, "servable_thumb.jpg", bytes.NewReader(payload))
	require.NoError(t, err)
	thumb, err := ts.sizeRepo.GetBySlug("thumb")
	require.NoError(t, err)
	w, h := 256, 256
	md5sum := "abc"
	require.NoError(t, ts.psRepo.Create(&models.PhotoSize{
		PhotoID: photo.ID, SizeID: thumb.ID, ImagePath: relPath,
		Width: &w, Height: &h, MD5: &md5sum,
	}))

	rec := ts.request(t, http.MethodGet, "/api/public/photos/"+photo.PublicID+"/image/thumb", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, payload, rec.Body.Bytes())

	// unknown size slug and missing rendition both present as 404
	rec = ts.request(t, http.MethodGet, "/api/public/photos/"+photo.PublicID+"/image/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.request(t, http.MethodGet, "/api/public/photos/"+photo.PublicID+"/image/preview", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// rendition entries carry the size registry uuid
	rec = ts.request(t, http.MethodGet, "/api/public/photos?include_sizes=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var photos []PhotoSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	require.Len(t, photos[0].Sizes, 1)
	assert.Equal(t, thumb.PublicID, photos[0].Sizes[0].UUID)
}

func TestGetAlbumWithOrderedPhotos(t *testing.T) {
	ts := newTestServer(t)

	album := &models.Album{Title: "Gallery", SortMethod: models.SortMethodManual}
	require.NoError(t, ts.albumRepo.Create(album))

	first := ts.seedPhoto(t, "first", true)
	second := ts.seedPhoto(t, "second", true)
	draft := ts.seedPhoto(t, "draft", false)
	require.NoError(t, ts.photoRepo.AssignAlbums(first.ID, []uint{album.ID}))
	require.NoError(t, ts.photoRepo.AssignAlbums(second.ID, []uint{album.ID}))
	require.NoError(t, ts.photoRepo.AssignAlbums(draft.ID, []uint{album.ID}))

	rec := ts.request(t, http.MethodGet, "/api/public/albums/"+album.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail AlbumDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Photos, 2, "drafts stay out of the public album view")
	assert.Equal(t, first.PublicID, detail.Photos[0].UUID)
	assert.Equal(t, second.PublicID, detail.Photos[1].UUID)
	assert.Equal(t, models.SortMethodManual, detail.SortMethod)
	assert.Nil(t, detail.Parent)
}

func TestGetAlbumParentSummary(t *testing.T) {
	ts := newTestServer(t)

	parent := &models.Album{Title: "Trips"}
	require.NoError(t, ts.albumRepo.Create(parent))
	child := &models.Album{Title: "Japan", ParentID: &parent.ID}
	require.NoError(t, ts.albumRepo.Create(child))

	rec := ts.request(t, http.MethodGet, "/api/public/albums/"+child.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail AlbumDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.NotNil(t, detail.Parent)
	assert.Equal(t, parent.PublicID, detail.Parent.UUID)
	assert.Equal(t, "trips", detail.Parent.Slug)
}

func TestGetTagListsPublishedPhotos(t *testing.T) {
	ts := newTestServer(t)

	tag := &models.Tag{Name: "mood"}
	require.NoError(t, ts.tagRepo.Create(tag))

	pub := ts.seedPhoto(t, "tagged", true)
	draft := ts.seedPhoto(t, "tagged draft", false)
	require.NoError(t, ts.photoRepo.AssignTags(pub.ID, []uint{tag.ID}))
	require.NoError(t, ts.photoRepo.AssignTags(draft.ID, []uint{tag.ID}))

	rec := ts.request(t, http.MethodGet, "/api/public/tags/"+tag.PublicID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail TagDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "mood", detail.Name)
	require.Len(t, detail.Photos, 1)
	assert.Equal(t, pub.PublicID, detail.Photos[0].UUID)
}

func TestListSizesPublicOnly(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.sizeRepo.Create(&models.Size{Slug: "hidden-size", MaxDimension: 99, Public: false}))

	rec := ts.request(t, http.MethodGet, "/api/public/sizes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sizes []SizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sizes))
	assert.Len(t, sizes, 2) // just the builtin pair

	rec = ts.request(t, http.MethodGet, "/api/public/sizes/thumb", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var size SizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &size))
	assert.Equal(t, "thumb", size.Slug)

	// a non-public size looks exactly like a missing one
	rec = ts.request(t, http.MethodGet, "/api/public/sizes/hidden-size", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a broken database surfaces as 500, not a fake 404
	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	handler := &PublicHandler{SizeRepo: ts.sizeRepo}
	req := httptest.NewRequest(http.MethodGet, "/sizes/thumb", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sizeSlug", "thumb")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	direct := httptest.NewRecorder()
	handler.GetSize(direct, req)
	assert.Equal(t, http.StatusInternalServerError, direct.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPhoto(t, "counted", true)

	rec := ts.request(t, http.MethodGet, "/api/public/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats["total_photos"])
}
