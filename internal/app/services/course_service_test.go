package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
)

func newCourseFixture(t *testing.T) (CourseService, *fakeUserRepo, *fakeCourseRepo, *fakeEnrollmentRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	courseRepo := newFakeCourseRepo()
	enrollmentRepo := newFakeEnrollmentRepo(courseRepo)
	svc := NewCourseService(courseRepo, enrollmentRepo, userRepo)
	return svc, userRepo, courseRepo, enrollmentRepo
}

func TestListCoursesMarksEnrolled(t *testing.T) {
	svc, userRepo, courseRepo, enrollmentRepo := newCourseFixture(t)
	user, student := userRepo.addUserWithStudent(&models.User{Username: "alice", Email: "alice@example.com"})
	math := courseRepo.addCourse("Mathematics 101", "Calculus.")
	physics := courseRepo.addCourse("Physics 101", "Mechanics.")

	_, _, err := enrollmentRepo.Enroll(context.Background(), student.ID, math.ID, 5)
	require.NoError(t, err)

	resp, err := svc.ListCourses(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)

	require.Len(t, resp.Courses, 2)
	assert.Equal(t, []int64{math.ID}, resp.EnrolledCourseIDs)

	byID := make(map[int64]dto.CourseResponse, len(resp.Courses))
	for _, course := range resp.Courses {
		byID[course.ID] = course
	}
	assert.True(t, byID[math.ID].Enrolled)
	assert.False(t, byID[physics.ID].Enrolled)

	assert.Equal(t, int64(2), resp.PaginationInfo.TotalItems)
	assert.Equal(t, 1, resp.PaginationInfo.CurrentPage)
}

func TestListCoursesWithoutStudentProfile(t *testing.T) {
	svc, _, courseRepo, _ := newCourseFixture(t)
	courseRepo.addCourse("Mathematics 101", "")

	_, err := svc.ListCourses(context.Background(), 404, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestGetCourse(t *testing.T) {
	svc, _, courseRepo, _ := newCourseFixture(t)
	course := courseRepo.addCourse("Chemistry 101", "Stoichiometry.")

	resp, err := svc.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chemistry 101", resp.Name)
	assert.Equal(t, "Stoichiometry.", resp.Description)

	_, err = svc.GetCourse(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCreateCourse(t *testing.T) {
	svc, _, _, _ := newCourseFixture(t)

	resp, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Name:        "Literature 101",
		Description: "Close reading.",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Literature 101", resp.Name)

	_, err = svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{Name: "Literature 101"})
	assert.ErrorIs(t, err, apperrors.ErrCourseAlreadyExists)
}

func TestUpdateCourse(t *testing.T) {
	svc, _, courseRepo, _ := newCourseFixture(t)
	course := courseRepo.addCourse("Old Name", "Old description.")

	resp, err := svc.UpdateCourse(context.Background(), course.ID, &dto.UpdateCourseRequest{
		Name:        "New Name",
		Description: "New description.",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, "New description.", resp.Description)

	_, err = svc.UpdateCourse(context.Background(), 999, &dto.UpdateCourseRequest{Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestDeleteCourse(t *testing.T) {
	svc, _, courseRepo, _ := newCourseFixture(t)
	course := courseRepo.addCourse("Doomed 101", "")

	require.NoError(t, svc.DeleteCourse(context.Background(), course.ID))
	assert.ErrorIs(t, svc.DeleteCourse(context.Background(), course.ID), apperrors.ErrCourseNotFound)
}
