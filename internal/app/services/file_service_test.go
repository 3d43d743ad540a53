package services

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/filestorage"
)

type fileFixture struct {
	svc            FileService
	userRepo       *fakeUserRepo
	courseRepo     *fakeCourseRepo
	enrollmentRepo *fakeEnrollmentRepo
	fileRepo       *fakeFileRepo
	storage        *filestorage.LocalStorage
	storageDir     string
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	courseRepo := newFakeCourseRepo()
	enrollmentRepo := newFakeEnrollmentRepo(courseRepo)
	fileRepo := newFakeFileRepo()

	storageDir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(storageDir)
	require.NoError(t, err)

	svc := NewFileService(fileRepo, courseRepo, enrollmentRepo, userRepo, storage, zerolog.Nop())
	return &fileFixture{
		svc:            svc,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		fileRepo:       fileRepo,
		storage:        storage,
		storageDir:     storageDir,
	}
}

// storedFileCount counts the regular files under the storage root.
func (f *fileFixture) storedFileCount(t *testing.T) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(f.storageDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

// enrolledUser creates a user with a student profile enrolled in a fresh course.
func (f *fileFixture) enrolledUser(t *testing.T, username, courseName string) (*models.User, *models.Course) {
	t.Helper()
	user, student := f.userRepo.addUserWithStudent(&models.User{Username: username, Email: username + "@example.com"})
	course := f.courseRepo.addCourse(courseName, "")
	_, _, err := f.enrollmentRepo.Enroll(context.Background(), student.ID, course.ID, 5)
	require.NoError(t, err)
	return user, course
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	content := []byte("my homework")
	resp, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "homework.pdf", content))
	require.NoError(t, err)

	assert.Equal(t, "homework.pdf", resp.FileName)
	assert.Equal(t, course.ID, resp.CourseID)
	assert.Equal(t, user.ID, resp.UploadedBy)
	assert.Equal(t, int64(len(content)), resp.FileSize)

	record, err := f.fileRepo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, f.storage.Exists(record.FilePath))

	stored, err := os.ReadFile(f.storage.GetFullPath(record.FilePath))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestUploadRequiresEnrollment(t *testing.T) {
	f := newFileFixture(t)
	user, _ := f.userRepo.addUserWithStudent(&models.User{Username: "bob", Email: "bob@example.com"})
	course := f.courseRepo.addCourse("Physics 101", "")

	_, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
	assert.Empty(t, f.fileRepo.files)
}

func TestUploadUnknownCourse(t *testing.T) {
	f := newFileFixture(t)
	user, _ := f.userRepo.addUserWithStudent(&models.User{Username: "bob", Email: "bob@example.com"})

	_, err := f.svc.Upload(context.Background(), user.ID, 999, newFileHeader(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestUploadFailedRecordInsertLeavesNoBinary(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	insertErr := errors.New("insert failed")
	f.fileRepo.createErr = insertErr

	_, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "lost.txt", []byte("x")))
	assert.ErrorIs(t, err, insertErr)

	// The binary written before the failed insert is removed again.
	assert.Empty(t, f.fileRepo.files)
	assert.Zero(t, f.storedFileCount(t))
}

func TestDeleteToleratesConcurrentlyRemovedRecord(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "racy.txt", []byte("x")))
	require.NoError(t, err)

	record, err := f.fileRepo.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	relPath := record.FilePath

	// The record vanishes between the binary delete and the record delete.
	f.fileRepo.deleteErr = apperrors.ErrFileNotFound

	require.NoError(t, f.svc.Delete(context.Background(), user.ID, false, uploaded.ID))
	assert.False(t, f.storage.Exists(relPath))
}

type failingDeleteStorage struct {
	*filestorage.LocalStorage
	deleteErr error
}

func (s *failingDeleteStorage) DeleteFile(string) error {
	return s.deleteErr
}

func TestDeleteFailedStorageKeepsRecord(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "stuck.txt", []byte("x")))
	require.NoError(t, err)

	storage := &failingDeleteStorage{LocalStorage: f.storage, deleteErr: errors.New("disk error")}
	svc := NewFileService(f.fileRepo, f.courseRepo, f.enrollmentRepo, f.userRepo, storage, zerolog.Nop())

	err = svc.Delete(context.Background(), user.ID, false, uploaded.ID)
	require.Error(t, err)

	// The binary delete failed, so the record must survive.
	record, err := f.fileRepo.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.True(t, f.storage.Exists(record.FilePath))
}

func TestListCourseFiles(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	_, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "one.txt", []byte("1")))
	require.NoError(t, err)
	_, err = f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "two.txt", []byte("2")))
	require.NoError(t, err)

	resp, err := f.svc.ListCourseFiles(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, resp.CourseID)
	assert.Len(t, resp.Files, 2)
}

func TestListCourseFilesRequiresEnrollment(t *testing.T) {
	f := newFileFixture(t)
	_, course := f.enrolledUser(t, "alice", "Mathematics 101")
	outsider, _ := f.userRepo.addUserWithStudent(&models.User{Username: "mallory", Email: "mallory@example.com"})

	_, err := f.svc.ListCourseFiles(context.Background(), outsider.ID, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestDownloadReturnsOriginalName(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	content := []byte("download me")
	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "report.docx", content))
	require.NoError(t, err)

	// Any authenticated user may download, no enrollment check.
	fullPath, fileName, err := f.svc.Download(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, "report.docx", fileName)

	stored, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestDownloadMissingRecord(t *testing.T) {
	f := newFileFixture(t)

	_, _, err := f.svc.Download(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestDownloadMissingBinary(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "gone.txt", []byte("x")))
	require.NoError(t, err)

	record, err := f.fileRepo.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	require.NoError(t, f.storage.DeleteFile(record.FilePath))

	_, _, err = f.svc.Download(context.Background(), uploaded.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileDataMissing)
}

func TestDeleteByUploaderRemovesRecordAndBinary(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "trash.txt", []byte("x")))
	require.NoError(t, err)

	record, err := f.fileRepo.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	relPath := record.FilePath

	require.NoError(t, f.svc.Delete(context.Background(), user.ID, false, uploaded.ID))

	_, err = f.fileRepo.GetByID(context.Background(), uploaded.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
	assert.False(t, f.storage.Exists(relPath))
}

func TestDeleteByNonUploaderForbidden(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")
	other, _ := f.userRepo.addUserWithStudent(&models.User{Username: "bob", Email: "bob@example.com"})

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "mine.txt", []byte("x")))
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), other.ID, false, uploaded.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFileUploader)

	// The record and binary survive the rejected delete.
	record, err := f.fileRepo.GetByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.True(t, f.storage.Exists(record.FilePath))
}

func TestDeleteByStaffAllowed(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")
	staff, _ := f.userRepo.addUserWithStudent(&models.User{Username: "admin", Email: "admin@example.com", IsStaff: true})

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "any.txt", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), staff.ID, true, uploaded.ID))

	_, err = f.fileRepo.GetByID(context.Background(), uploaded.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestConfirmDelete(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "confirm.txt", []byte("x")))
	require.NoError(t, err)

	resp, err := f.svc.ConfirmDelete(context.Background(), user.ID, false, uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.ID, resp.File.ID)
	assert.Contains(t, resp.Message, "confirm.txt")

	// Confirmation alone deletes nothing.
	_, err = f.fileRepo.GetByID(context.Background(), uploaded.ID)
	assert.NoError(t, err)
}

func TestConfirmDeleteForbiddenForNonUploader(t *testing.T) {
	f := newFileFixture(t)
	user, course := f.enrolledUser(t, "alice", "Mathematics 101")
	other, _ := f.userRepo.addUserWithStudent(&models.User{Username: "bob", Email: "bob@example.com"})

	uploaded, err := f.svc.Upload(context.Background(), user.ID, course.ID, newFileHeader(t, "mine.txt", []byte("x")))
	require.NoError(t, err)

	_, err = f.svc.ConfirmDelete(context.Background(), other.ID, false, uploaded.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFileUploader)
}
