package deadline

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesistrack/backend/model"
)

func TestToDeadlineResponse_Upcoming(t *testing.T) {
	d := model.Deadline{
		Title:        "Spring defense",
		DeadlineType: model.DeadlineDefense,
		DeadlineDate: time.Now().AddDate(0, 0, 10),
		IsActive:     true,
	}

	resp := toDeadlineResponse(d)

	assert.True(t, resp.IsUpcoming)
	assert.InDelta(t, 9, resp.DaysRemaining, 1)
}

func TestToDeadlineResponse_Past(t *testing.T) {
	d := model.Deadline{
		Title:        "Missed deadline",
		DeadlineDate: time.Now().AddDate(0, 0, -3),
		IsActive:     true,
	}

	resp := toDeadlineResponse(d)

	assert.False(t, resp.IsUpcoming)
	assert.Equal(t, 0, resp.DaysRemaining)
}

func TestToDeadlineResponse_InactiveNeverUpcoming(t *testing.T) {
	d := model.Deadline{
		Title:        "Suspended deadline",
		DeadlineDate: time.Now().AddDate(0, 0, 5),
		IsActive:     false,
	}

	assert.False(t, toDeadlineResponse(d).IsUpcoming)
}

func TestToDeadlineResponses_PreservesOrder(t *testing.T) {
	deadlines := []model.Deadline{
		{Title: "first", DeadlineDate: time.Now().AddDate(0, 0, 1), IsActive: true},
		{Title: "second", DeadlineDate: time.Now().AddDate(0, 0, 2), IsActive: true},
	}

	out := toDeadlineResponses(deadlines)

	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "second", out[1].Title)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Deadline{}))
	return db
}

func listDeadlines(t *testing.T, db *gorm.DB, user *model.User, path string) []model.Deadline {
	t.Helper()

	h := NewDeadlineHandler(db)
	app := fiber.New()
	app.Get("/deadlines", func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return h.List(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Success bool             `json:"success"`
		Data    []model.Deadline `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestList_StaffDefaultsToActiveOnly(t *testing.T) {
	db := newTestDB(t)

	professor := model.User{ID: "prof-1", Email: "prof@uni.test", Role: model.RoleProfessor, IsActive: true}
	require.NoError(t, db.Create(&professor).Error)

	active := model.Deadline{
		ID: "dl-1", Title: "Open deadline", DeadlineType: model.DeadlineSubmission,
		DeadlineDate: time.Now().AddDate(0, 0, 7), IsActive: true, IsGlobal: true, CreatedBy: professor.ID,
	}
	expired := model.Deadline{
		ID: "dl-2", Title: "Expired deadline", DeadlineType: model.DeadlineSubmission,
		DeadlineDate: time.Now().AddDate(0, 0, -7), IsGlobal: true, CreatedBy: professor.ID,
	}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Model(&model.Deadline{}).Where("id = ?", expired.ID).
		Update("is_active", false).Error)

	// Without a filter only active deadlines are listed
	listed := listDeadlines(t, db, &professor, "/deadlines")
	require.Len(t, listed, 1)
	assert.Equal(t, "dl-1", listed[0].ID)

	// Staff can explicitly ask for the full history
	all := listDeadlines(t, db, &professor, "/deadlines?active_only=false")
	assert.Len(t, all, 2)
}
