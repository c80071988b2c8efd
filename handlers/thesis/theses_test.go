package thesis

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesistrack/backend/model"
	"thesistrack/backend/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Thesis{},
		&model.ThesisComment{},
		&model.ThesisAttachment{},
		&model.ThesisCommitteeMember{},
		&model.AssistantRequest{},
		&model.Review{},
	))
	return db
}

func newUpdateApp(t *testing.T, db *gorm.DB, user *model.User) *fiber.App {
	t.Helper()

	h := NewThesisHandler(db, services.NewFileStore(t.TempDir()))
	app := fiber.New()
	app.Put("/theses/:id", func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return h.Update(c)
	})
	return app
}

func putJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()

	req := httptest.NewRequest("PUT", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestUpdate_OwnerStatusJumpForbidden(t *testing.T) {
	db := newTestDB(t)

	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&student).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Submitted work", Status: model.StatusSubmitted, StudentID: student.ID}
	require.NoError(t, db.Create(&thesis).Error)

	app := newUpdateApp(t, db, &student)

	// A student cannot approve their own thesis; the denial is a
	// permission error, not a bad request
	status := putJSON(t, app, "/theses/th-1", `{"status":"approved"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	var reloaded model.Thesis
	require.NoError(t, db.First(&reloaded, "id = ?", "th-1").Error)
	assert.Equal(t, model.StatusSubmitted, reloaded.Status)
}

func TestUpdate_OwnerContentEditOutsideDraftForbidden(t *testing.T) {
	db := newTestDB(t)

	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&student).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Submitted work", Status: model.StatusSubmitted, StudentID: student.ID}
	require.NoError(t, db.Create(&thesis).Error)

	app := newUpdateApp(t, db, &student)

	status := putJSON(t, app, "/theses/th-1", `{"title":"Sneaky rename"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdate_ReviewerOffTableTransitionBadRequest(t *testing.T) {
	db := newTestDB(t)

	professor := model.User{ID: "prof-1", Email: "prof@uni.test", Role: model.RoleProfessor, IsActive: true}
	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&professor).Error)
	require.NoError(t, db.Create(&student).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Submitted work", Status: model.StatusSubmitted, StudentID: student.ID, SupervisorID: &professor.ID}
	require.NoError(t, db.Create(&thesis).Error)

	app := newUpdateApp(t, db, &professor)

	// submitted -> approved skips under_review and stays invalid even
	// for reviewers
	status := putJSON(t, app, "/theses/th-1", `{"status":"approved"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdate_OwnerSubmitsDraft(t *testing.T) {
	db := newTestDB(t)

	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&student).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Draft work", Status: model.StatusDraft, StudentID: student.ID}
	require.NoError(t, db.Create(&thesis).Error)

	app := newUpdateApp(t, db, &student)

	status := putJSON(t, app, "/theses/th-1", `{"status":"submitted"}`)
	assert.Equal(t, fiber.StatusOK, status)

	var reloaded model.Thesis
	require.NoError(t, db.First(&reloaded, "id = ?", "th-1").Error)
	assert.Equal(t, model.StatusSubmitted, reloaded.Status)
	assert.NotNil(t, reloaded.SubmissionDate)
}

func TestUpdate_EmptySupervisorIDClearsAssignment(t *testing.T) {
	db := newTestDB(t)

	professor := model.User{ID: "prof-1", Email: "prof@uni.test", Role: model.RoleProfessor, IsActive: true}
	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&professor).Error)
	require.NoError(t, db.Create(&student).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Draft work", Status: model.StatusDraft, StudentID: student.ID, SupervisorID: &professor.ID}
	require.NoError(t, db.Create(&thesis).Error)

	app := newUpdateApp(t, db, &student)

	status := putJSON(t, app, "/theses/th-1", `{"supervisor_id":""}`)
	assert.Equal(t, fiber.StatusOK, status)

	var reloaded model.Thesis
	require.NoError(t, db.First(&reloaded, "id = ?", "th-1").Error)
	assert.Nil(t, reloaded.SupervisorID)
}
