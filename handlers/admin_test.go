package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
)

func TestAdminPhotoUpload(t *testing.T) {
	ts := newTestServer(t)

	img := imaging.New(200, 150, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var jpegBuf bytes.Buffer
	require.NoError(t, imaging.Encode(&jpegBuf, img, imaging.JPEG))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "city lights.jpg")
	require.NoError(t, err)
	_, err = part.Write(jpegBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.WriteField("title", "City Lights"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/photos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "City Lights", created.Title)
	assert.NotEmpty(t, created.PublicID)
	assert.False(t, created.Published, "publishing waits for the pipeline")
	assert.True(t, ts.store.Exists(created.RawImagePath))
}

func TestAdminPhotoUploadRequiresFile(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "No File"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/photos", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminPhotoUpdatePublishes(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "pending", false)

	// hide it, then flip hidden off with a publish date in the past
	payload := fmt.Sprintf(`{"hidden": false, "publish_date": %d, "tags": ["night", "city"]}`,
		time.Now().Add(-time.Minute).Unix())
	rec := ts.request(t, http.MethodPut, "/api/admin/photos/"+photo.PublicID, []byte(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Published)
	require.Len(t, updated.Tags, 2)
}

func TestAdminPhotoUpdateUnpublishesOnHide(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "retracting", true)

	rec := ts.request(t, http.MethodPut, "/api/admin/photos/"+photo.PublicID, []byte(`{"hidden": true}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Published)
}

func TestAdminPhotoDelete(t *testing.T) {
	ts := newTestServer(t)
	photo := ts.seedPhoto(t, "removable", true)

	rec := ts.request(t, http.MethodDelete, "/api/admin/photos/"+photo.PublicID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := ts.photoRepo.GetByID(photo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rec = ts.request(t, http.MethodDelete, "/api/admin/photos/"+photo.PublicID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminTagRenameMerge(t *testing.T) {
	ts := newTestServer(t)

	target := &models.Tag{Name: "ocean"}
	require.NoError(t, ts.tagRepo.Create(target))
	doomed := &models.Tag{Name: "sea"}
	require.NoError(t, ts.tagRepo.Create(doomed))

	rec := ts.request(t, http.MethodPut, "/api/admin/tags/"+doomed.PublicID, []byte(`{"name": "ocean"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var survivor models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &survivor))
	assert.Equal(t, target.PublicID, survivor.PublicID, "the response identity is the surviving tag")

	// the merged-away tag no longer resolves
	rec = ts.request(t, http.MethodPut, "/api/admin/tags/"+doomed.PublicID, []byte(`{"name": "sea"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminTagCreateInvalidName(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/admin/tags", []byte(`{"name": "a;b"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSizeGuards(t *testing.T) {
	ts := newTestServer(t)

	thumb, err := ts.sizeRepo.GetBySlug("thumb")
	require.NoError(t, err)
	preview, err := ts.sizeRepo.GetBySlug("preview")
	require.NoError(t, err)

	// the locked builtin rejects all edits and deletion
	rec := ts.request(t, http.MethodPut, "/api/admin/sizes/"+thumb.PublicID, []byte(`{"max_dimension": 512}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.request(t, http.MethodDelete, "/api/admin/sizes/"+thumb.PublicID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the editable builtin allows geometry edits but not slug changes
	rec = ts.request(t, http.MethodPut, "/api/admin/sizes/"+preview.PublicID, []byte(`{"slug": "renamed"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.request(t, http.MethodPut, "/api/admin/sizes/"+preview.PublicID, []byte(`{"max_dimension": 1600}`))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.request(t, http.MethodDelete, "/api/admin/sizes/"+preview.PublicID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSizeCreateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/admin/sizes", []byte(`{"slug": "wallpaper", "max_dimension": 2560}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Size
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "wallpaper", created.Slug)
	assert.False(t, created.Builtin)

	rec = ts.request(t, http.MethodDelete, "/api/admin/sizes/"+created.PublicID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminAlbumCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/admin/albums", []byte(`{"description": "no title"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/admin/albums", []byte(`{"title": "Valid", "sort_method": "BOGUS"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/admin/albums", []byte(`{"title": "Valid"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var album models.Album
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &album))
	assert.Equal(t, "valid", album.Slug)
	assert.Equal(t, models.DefaultSortMethod, album.SortMethod)

	// a second album with the same title collides on the derived slug
	rec = ts.request(t, http.MethodPost, "/api/admin/albums", []byte(`{"title": "Valid"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
