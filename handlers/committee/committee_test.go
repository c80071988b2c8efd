package committee

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
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Thesis{}, &model.ThesisCommitteeMember{}))
	return db
}

func newUpdateApp(db *gorm.DB, user *model.User) *fiber.App {
	h := NewCommitteeHandler(db)
	app := fiber.New()
	app.Put("/committee/:id", func(c *fiber.Ctx) error {
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

func seedMembership(t *testing.T, db *gorm.DB) (model.User, model.ThesisCommitteeMember) {
	t.Helper()

	student := model.User{ID: "stu-1", Email: "stu@uni.test", Role: model.RoleStudent, IsActive: true}
	assistant := model.User{ID: "asst-1", Email: "asst@uni.test", Role: model.RoleGraduationAssistant, IsActive: true}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&assistant).Error)

	thesis := model.Thesis{ID: "th-1", Title: "Work", Status: model.StatusUnderReview, StudentID: student.ID}
	require.NoError(t, db.Create(&thesis).Error)

	member := model.ThesisCommitteeMember{ID: "mem-1", Role: model.CommitteeReviewer, ThesisID: thesis.ID, UserID: assistant.ID}
	require.NoError(t, db.Create(&member).Error)

	return assistant, member
}

func TestUpdate_StrangerEmptyBodyForbidden(t *testing.T) {
	db := newTestDB(t)
	_, member := seedMembership(t, db)

	stranger := model.User{ID: "stu-2", Email: "other@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&stranger).Error)

	// An update with no fields must still require update permission
	app := newUpdateApp(db, &stranger)
	status := putJSON(t, app, "/committee/"+member.ID, `{}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdate_MemberTogglesOwnApproval(t *testing.T) {
	db := newTestDB(t)
	assistant, member := seedMembership(t, db)

	app := newUpdateApp(db, &assistant)
	status := putJSON(t, app, "/committee/"+member.ID, `{"has_approved":true}`)
	assert.Equal(t, fiber.StatusOK, status)

	var reloaded model.ThesisCommitteeMember
	require.NoError(t, db.First(&reloaded, "id = ?", member.ID).Error)
	assert.True(t, reloaded.HasApproved)
	assert.NotNil(t, reloaded.ApprovalDate)
}

func TestUpdate_MemberCannotChangeOwnRole(t *testing.T) {
	db := newTestDB(t)
	assistant, member := seedMembership(t, db)

	app := newUpdateApp(db, &assistant)
	status := putJSON(t, app, "/committee/"+member.ID, `{"role":"chair"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}
