package services

import (
	"context"
	"time"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/repositories"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
)

// In-memory repository fakes used across the service tests.

type fakeUserRepo struct {
	users    map[int64]*models.User
	students map[int64]*models.Student // keyed by user id
	nextID   int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[int64]*models.User),
		students: make(map[int64]*models.Student),
		nextID:   1,
	}
}

func (r *fakeUserRepo) addUserWithStudent(user *models.User) (*models.User, *models.Student) {
	userCopy := *user
	userCopy.ID = r.nextID
	r.nextID++
	r.users[userCopy.ID] = &userCopy

	student := &models.Student{ID: userCopy.ID + 1000, UserID: userCopy.ID, CreatedAt: time.Now()}
	r.students[userCopy.ID] = student
	return &userCopy, student
}

func (r *fakeUserRepo) CreateUserWithStudent(_ context.Context, user *models.User) (int64, int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, 0, apperrors.ErrUsernameAlreadyExists
		}
		if existing.Email == user.Email {
			return 0, 0, apperrors.ErrEmailAlreadyExists
		}
	}
	created, student := r.addUserWithStudent(user)
	return created.ID, student.ID, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) GetStudentByUserID(_ context.Context, userID int64) (*models.Student, error) {
	student, ok := r.students[userID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

type fakeCourseRepo struct {
	courses map[int64]*models.Course
	nextID  int64
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[int64]*models.Course), nextID: 1}
}

func (r *fakeCourseRepo) addCourse(name, description string) *models.Course {
	course := &models.Course{ID: r.nextID, Name: name, Description: description, CreatedAt: time.Now()}
	r.nextID++
	r.courses[course.ID] = course
	return course
}

func (r *fakeCourseRepo) GetAll(_ context.Context, page, size int) ([]models.Course, int64, error) {
	all := make([]models.Course, 0, len(r.courses))
	for id := int64(1); id < r.nextID; id++ {
		if course, ok := r.courses[id]; ok {
			all = append(all, *course)
		}
	}
	return all, int64(len(all)), nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return course, nil
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) (int64, error) {
	for _, existing := range r.courses {
		if existing.Name == course.Name {
			return 0, apperrors.ErrCourseAlreadyExists
		}
	}
	created := r.addCourse(course.Name, course.Description)
	return created.ID, nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	updated := *course
	r.courses[course.ID] = &updated
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

type enrollmentKey struct {
	studentID int64
	courseID  int64
}

type fakeEnrollmentRepo struct {
	enrollments map[enrollmentKey]*models.Enrollment
	courses     *fakeCourseRepo
	nextID      int64
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[enrollmentKey]*models.Enrollment),
		courses:     courses,
		nextID:      1,
	}
}

func (r *fakeEnrollmentRepo) Enroll(_ context.Context, studentID, courseID int64, maxPerStudent int) (*models.Enrollment, bool, error) {
	key := enrollmentKey{studentID, courseID}
	if existing, ok := r.enrollments[key]; ok {
		return existing, false, nil
	}

	count := 0
	for k := range r.enrollments {
		if k.studentID == studentID {
			count++
		}
	}
	if count >= maxPerStudent {
		return nil, false, apperrors.ErrEnrollmentLimit
	}

	enrollment := &models.Enrollment{
		ID:         r.nextID,
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	r.nextID++
	r.enrollments[key] = enrollment
	return enrollment, true, nil
}

func (r *fakeEnrollmentRepo) EnrolledCourseIDs(_ context.Context, studentID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for k := range r.enrollments {
		if k.studentID == studentID {
			ids = append(ids, k.courseID)
		}
	}
	return ids, nil
}

func (r *fakeEnrollmentRepo) IsEnrolled(_ context.Context, studentID, courseID int64) (bool, error) {
	_, ok := r.enrollments[enrollmentKey{studentID, courseID}]
	return ok, nil
}

func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID int64) ([]repositories.EnrollmentDetails, error) {
	details := make([]repositories.EnrollmentDetails, 0)
	for k, e := range r.enrollments {
		if k.studentID != studentID {
			continue
		}
		detail := repositories.EnrollmentDetails{
			ID:         e.ID,
			StudentID:  e.StudentID,
			CourseID:   e.CourseID,
			EnrolledAt: e.EnrolledAt,
		}
		if course, ok := r.courses.courses[e.CourseID]; ok {
			detail.CourseName = course.Name
			detail.CourseDescription = course.Description
		}
		details = append(details, detail)
	}
	return details, nil
}

type fakeFileRepo struct {
	files  map[int64]*models.FileUpload
	nextID int64

	// Injected failures for the next Create/Delete call.
	createErr error
	deleteErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[int64]*models.FileUpload), nextID: 1}
}

func (r *fakeFileRepo) Create(_ context.Context, upload *models.FileUpload) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	stored := *upload
	stored.ID = r.nextID
	stored.UploadedAt = time.Now()
	r.nextID++
	r.files[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id int64) (*models.FileUpload, error) {
	upload, ok := r.files[id]
	if !ok {
		return nil, apperrors.ErrFileNotFound
	}
	return upload, nil
}

func (r *fakeFileRepo) ListByCourse(_ context.Context, courseID int64) ([]models.FileUpload, error) {
	uploads := make([]models.FileUpload, 0)
	for id := int64(1); id < r.nextID; id++ {
		if upload, ok := r.files[id]; ok && upload.CourseID == courseID {
			uploads = append(uploads, *upload)
		}
	}
	return uploads, nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.files[id]; !ok {
		return apperrors.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID int64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*models.RefreshToken), nextID: 1}
}

func (r *fakeTokenRepo) Create(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	r.tokens[token] = &models.RefreshToken{
		ID:        r.nextID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.nextID++
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return stored, nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token string) error {
	stored, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	stored.Revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	for _, stored := range r.tokens {
		if stored.UserID == userID {
			stored.Revoked = true
		}
	}
	return nil
}
