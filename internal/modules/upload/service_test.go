package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: ":memory:"}),
		&gorm.Config{},
	)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Upload{}))

	dir := t.TempDir()
	return NewService(NewRepository(db), NewLocalStorage(dir, "/static/uploads")), dir
}

// fileHeader builds a real multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

func TestService_Save_PNG(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	up, err := svc.Save(ctx, 1, fileHeader(t, "avatar.png", pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/png", up.MimeType)
	assert.Equal(t, int64(1), up.UserID)
	assert.Equal(t, "avatar.png", up.OriginalName)
	assert.True(t, strings.HasPrefix(up.FileURL, "/static/uploads/"))

	// The stored bytes match what was uploaded.
	written, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(up.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)

	// Metadata is retrievable.
	got, err := svc.GetByID(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, up.Key, got.Key)
}

func TestService_Save_RejectsNonImage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), 1, fileHeader(t, "notes.txt", []byte("plain text content")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestService_Save_RejectsEmptyFile(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), 1, fileHeader(t, "empty.png", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestService_Save_DerivesExtensionFromMime(t *testing.T) {
	svc, _ := newTestService(t)

	up, err := svc.Save(context.Background(), 1, fileHeader(t, "avatar", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(up.Key, ".png"))
}

func TestService_ListByUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, fileHeader(t, "a.png", pngBytes))
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, fileHeader(t, "b.png", pngBytes))
	require.NoError(t, err)
	_, err = svc.Save(ctx, 2, fileHeader(t, "c.png", pngBytes))
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my-file", sanitizeName("my-file.png"))
	assert.Equal(t, "passwd", sanitizeName("../../etc/passwd"))
	assert.Equal(t, "file", sanitizeName(".png"))
	assert.Len(t, sanitizeName(strings.Repeat("a", 100)+".png"), 40)
}
