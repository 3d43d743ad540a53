package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
)

const testEnrollmentCap = 5

func newEnrollmentFixture(t *testing.T) (EnrollmentService, *fakeUserRepo, *fakeCourseRepo, *fakeEnrollmentRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	courseRepo := newFakeCourseRepo()
	enrollmentRepo := newFakeEnrollmentRepo(courseRepo)
	svc := NewEnrollmentService(enrollmentRepo, courseRepo, userRepo, testEnrollmentCap, zerolog.Nop())
	return svc, userRepo, courseRepo, enrollmentRepo
}

func TestEnrollCreatesEnrollment(t *testing.T) {
	svc, userRepo, courseRepo, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})
	course := courseRepo.addCourse("Mathematics 101", "Calculus.")

	resp, err := svc.Enroll(context.Background(), user.ID, course.ID)
	require.NoError(t, err)

	assert.False(t, resp.AlreadyEnrolled)
	assert.Equal(t, course.ID, resp.CourseID)
	assert.Equal(t, "Mathematics 101", resp.CourseName)
	assert.NotZero(t, resp.EnrollmentID)
	assert.Contains(t, resp.Message, "enrolled in Mathematics 101")
}

func TestEnrollTwiceReportsAlreadyEnrolled(t *testing.T) {
	svc, userRepo, courseRepo, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})
	course := courseRepo.addCourse("Physics 101", "Mechanics.")

	first, err := svc.Enroll(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	second, err := svc.Enroll(context.Background(), user.ID, course.ID)
	require.NoError(t, err)

	assert.False(t, first.AlreadyEnrolled)
	assert.True(t, second.AlreadyEnrolled)
	assert.Equal(t, first.EnrollmentID, second.EnrollmentID)
	assert.Contains(t, second.Message, "already enrolled")
}

func TestEnrollEnforcesCap(t *testing.T) {
	svc, userRepo, courseRepo, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})

	for i := 0; i < testEnrollmentCap; i++ {
		course := courseRepo.addCourse(fmt.Sprintf("Course %d", i), "")
		_, err := svc.Enroll(context.Background(), user.ID, course.ID)
		require.NoError(t, err)
	}

	extra := courseRepo.addCourse("One Too Many", "")
	_, err := svc.Enroll(context.Background(), user.ID, extra.ID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentLimit)
}

func TestEnrollAtCapInHeldCourseStillSucceeds(t *testing.T) {
	svc, userRepo, courseRepo, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})

	var firstCourse *models.Course
	for i := 0; i < testEnrollmentCap; i++ {
		course := courseRepo.addCourse(fmt.Sprintf("Course %d", i), "")
		if firstCourse == nil {
			firstCourse = course
		}
		_, err := svc.Enroll(context.Background(), user.ID, course.ID)
		require.NoError(t, err)
	}

	// Re-enrolling in a held course is not blocked by the cap.
	resp, err := svc.Enroll(context.Background(), user.ID, firstCourse.ID)
	require.NoError(t, err)
	assert.True(t, resp.AlreadyEnrolled)
}

func TestEnrollUnknownCourse(t *testing.T) {
	svc, userRepo, _, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})

	_, err := svc.Enroll(context.Background(), user.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestEnrollWithoutStudentProfile(t *testing.T) {
	svc, _, courseRepo, _ := newEnrollmentFixture(t)
	course := courseRepo.addCourse("Physics 101", "")

	_, err := svc.Enroll(context.Background(), 404, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestMyCourses(t *testing.T) {
	svc, userRepo, courseRepo, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})
	math := courseRepo.addCourse("Mathematics 101", "Calculus.")
	physics := courseRepo.addCourse("Physics 101", "Mechanics.")

	_, err := svc.Enroll(context.Background(), user.ID, math.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), user.ID, physics.ID)
	require.NoError(t, err)

	resp, err := svc.MyCourses(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, resp.Enrollments, 2)

	names := []string{resp.Enrollments[0].CourseName, resp.Enrollments[1].CourseName}
	assert.Contains(t, names, "Mathematics 101")
	assert.Contains(t, names, "Physics 101")
}

func TestMyCoursesEmpty(t *testing.T) {
	svc, userRepo, _, _ := newEnrollmentFixture(t)
	user, _ := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})

	resp, err := svc.MyCourses(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Enrollments)
}
