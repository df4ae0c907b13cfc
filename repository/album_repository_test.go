package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
)

func TestAlbumCreateDerivedFields(t *testing.T) {
	repo := NewAlbumRepository(setupTestDB(t))

	long := strings.Repeat("x", 150)
	album := &models.Album{Title: "Summer 2025!", Description: long}
	require.NoError(t, repo.Create(album))

	assert.Equal(t, "summer-2025", album.Slug)
	assert.Equal(t, models.DefaultSortMethod, album.SortMethod)
	assert.Len(t, album.ShortDescription, 100)
	assert.True(t, strings.HasSuffix(album.ShortDescription, "..."))
}

func TestAlbumShortDescriptionKeptWhenShort(t *testing.T) {
	repo := NewAlbumRepository(setupTestDB(t))

	album := &models.Album{Title: "Brief", Description: "a short one"}
	require.NoError(t, repo.Create(album))
	assert.Equal(t, "a short one", album.ShortDescription)
}

func TestAlbumRejectsInvalidSortMethod(t *testing.T) {
	repo := NewAlbumRepository(setupTestDB(t))

	err := repo.Create(&models.Album{Title: "Bad", SortMethod: "ALPHABETICAL"})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAlbumParentCycleRejected(t *testing.T) {
	repo := NewAlbumRepository(setupTestDB(t))

	root := &models.Album{Title: "Root"}
	require.NoError(t, repo.Create(root))
	child := &models.Album{Title: "Child", ParentID: &root.ID}
	require.NoError(t, repo.Create(child))
	grandchild := &models.Album{Title: "Grandchild", ParentID: &child.ID}
	require.NoError(t, repo.Create(grandchild))

	// reparenting the root under its own grandchild would close a cycle
	root.ParentID = &grandchild.ID
	err := repo.Update(root)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	// self-parent is the degenerate cycle
	child.ParentID = &child.ID
	err = repo.Update(child)
	require.ErrorAs(t, err, &verr)
}

func TestAlbumDeleteDetachesChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlbumRepository(db)

	parent := &models.Album{Title: "Parent"}
	require.NoError(t, repo.Create(parent))
	child := &models.Album{Title: "Orphaned Child", ParentID: &parent.ID}
	require.NoError(t, repo.Create(child))

	require.NoError(t, repo.Delete(parent.ID))

	got, err := repo.GetByID(child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	_, err = repo.GetByID(parent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// seedOrderedAlbum builds an album with three published photos whose
// membership order is the reverse of their publish dates.
func seedOrderedAlbum(t *testing.T, db *gorm.DB, sortMethod string, descending bool) (*AlbumRepository, *models.Album, []*models.Photo) {
	t.Helper()
	photoRepo := NewPhotoRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Title: "Ordered " + sortMethod, SortMethod: sortMethod, SortDescending: descending}
	require.NoError(t, albumRepo.Create(album))

	base := time.Now().Add(-time.Hour).Unix()
	var photos []*models.Photo
	for i, title := range []string{"newest", "middle", "oldest"} {
		p := &models.Photo{
			Title:        title,
			RawImagePath: "raw_photos/" + title + ".jpg",
			PublishDate:  base - int64(i*60),
			Published:    true,
		}
		require.NoError(t, photoRepo.Create(p))
		require.NoError(t, photoRepo.AssignAlbums(p.ID, []uint{album.ID}))
		photos = append(photos, p)
	}
	return albumRepo, album, photos
}

func TestGetOrderedPhotosManualIgnoresDescending(t *testing.T) {
	db := setupTestDB(t)
	albumRepo, album, photos := seedOrderedAlbum(t, db, models.SortMethodManual, true)

	got, err := albumRepo.GetOrderedPhotos(album, true)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// membership order (insertion order), not reverse, despite descending
	assert.Equal(t, photos[0].ID, got[0].ID)
	assert.Equal(t, photos[1].ID, got[1].ID)
	assert.Equal(t, photos[2].ID, got[2].ID)
}

func TestGetOrderedPhotosPublished(t *testing.T) {
	db := setupTestDB(t)
	albumRepo, album, photos := seedOrderedAlbum(t, db, models.SortMethodPublished, false)

	got, err := albumRepo.GetOrderedPhotos(album, true)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// ascending publish date puts the oldest first
	assert.Equal(t, photos[2].ID, got[0].ID)
	assert.Equal(t, photos[0].ID, got[2].ID)

	album.SortDescending = true
	require.NoError(t, albumRepo.Update(album))
	got, err = albumRepo.GetOrderedPhotos(album, true)
	require.NoError(t, err)
	assert.Equal(t, photos[0].ID, got[0].ID)
}

func TestGetOrderedPhotosPublicOnly(t *testing.T) {
	db := setupTestDB(t)
	photoRepo := NewPhotoRepository(db)
	albumRepo := NewAlbumRepository(db)

	album := &models.Album{Title: "Mixed"}
	require.NoError(t, albumRepo.Create(album))

	pub := createTestPhoto(t, photoRepo, "public")
	require.NoError(t, photoRepo.SetPublished(pub.ID, true))
	draft := createTestPhoto(t, photoRepo, "draft")
	require.NoError(t, photoRepo.AssignAlbums(pub.ID, []uint{album.ID}))
	require.NoError(t, photoRepo.AssignAlbums(draft.ID, []uint{album.ID}))

	got, err := albumRepo.GetOrderedPhotos(album, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pub.ID, got[0].ID)

	got, err = albumRepo.GetOrderedPhotos(album, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetOrderedPhotosRandomReturnsAll(t *testing.T) {
	db := setupTestDB(t)
	albumRepo, album, _ := seedOrderedAlbum(t, db, models.SortMethodRandom, false)

	got, err := albumRepo.GetOrderedPhotos(album, true)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
