package comment

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

func comment(id string, parentID *string) model.ThesisComment {
	return model.ThesisComment{ID: id, ThesisID: "t1", UserID: "u1", ParentID: parentID}
}

func TestBuildCommentTree(t *testing.T) {
	c1 := "c1"
	c2 := "c2"

	flat := []model.ThesisComment{
		comment("c1", nil),
		comment("c2", nil),
		comment("c3", &c1),
		comment("c4", &c1),
		comment("c5", &c2),
	}

	tree := buildCommentTree(flat)

	require.Len(t, tree, 2)
	assert.Equal(t, "c1", tree[0].ID)
	assert.Equal(t, "c2", tree[1].ID)

	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "c3", tree[0].Replies[0].ID)
	assert.Equal(t, "c4", tree[0].Replies[1].ID)

	require.Len(t, tree[1].Replies, 1)
	assert.Equal(t, "c5", tree[1].Replies[0].ID)
}

func TestBuildCommentTree_DeepThread(t *testing.T) {
	c1 := "c1"
	c2 := "c2"
	c3 := "c3"

	// c1 <- c2 <- c3 <- c4, a reply chain four levels deep
	tree := buildCommentTree([]model.ThesisComment{
		comment("c1", nil),
		comment("c2", &c1),
		comment("c3", &c2),
		comment("c4", &c3),
	})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "c2", tree[0].Replies[0].ID)

	// Replies that are themselves parents keep their own replies
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "c3", tree[0].Replies[0].Replies[0].ID)
	require.Len(t, tree[0].Replies[0].Replies[0].Replies, 1)
	assert.Equal(t, "c4", tree[0].Replies[0].Replies[0].Replies[0].ID)
}

func TestBuildCommentTree_OrphanedReply(t *testing.T) {
	gone := "deleted-parent"

	tree := buildCommentTree([]model.ThesisComment{
		comment("c1", nil),
		comment("c2", &gone),
	})

	// Replies without a parent surface as top level rather than vanishing
	require.Len(t, tree, 2)
	assert.Equal(t, "c1", tree[0].ID)
	assert.Equal(t, "c2", tree[1].ID)
}

func TestBuildCommentTree_Empty(t *testing.T) {
	tree := buildCommentTree(nil)

	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Thesis{}, &model.ThesisComment{}))
	return db
}

func newUpdateApp(db *gorm.DB, user *model.User) *fiber.App {
	h := NewCommentHandler(db)
	app := fiber.New()
	app.Put("/comments/:id", func(c *fiber.Ctx) error {
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

func TestUpdate_StrangerEmptyBodyForbidden(t *testing.T) {
	db := newTestDB(t)

	author := model.User{ID: "stu-1", Email: "author@uni.test", Role: model.RoleStudent, IsActive: true}
	stranger := model.User{ID: "stu-2", Email: "other@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&author).Error)
	require.NoError(t, db.Create(&stranger).Error)

	thesis := model.Thesis{ID: "th-1", Title: "Work", Status: model.StatusUnderReview, StudentID: author.ID}
	require.NoError(t, db.Create(&thesis).Error)
	c := model.ThesisComment{ID: "com-1", Content: "note", ThesisID: thesis.ID, UserID: author.ID}
	require.NoError(t, db.Create(&c).Error)

	// An update with no fields must still require update permission
	app := newUpdateApp(db, &stranger)
	status := putJSON(t, app, "/comments/com-1", `{}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdate_AuthorEditsOwnComment(t *testing.T) {
	db := newTestDB(t)

	author := model.User{ID: "stu-1", Email: "author@uni.test", Role: model.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&author).Error)
	thesis := model.Thesis{ID: "th-1", Title: "Work", Status: model.StatusUnderReview, StudentID: author.ID}
	require.NoError(t, db.Create(&thesis).Error)
	c := model.ThesisComment{ID: "com-1", Content: "note", ThesisID: thesis.ID, UserID: author.ID}
	require.NoError(t, db.Create(&c).Error)

	app := newUpdateApp(db, &author)
	status := putJSON(t, app, "/comments/com-1", `{"content":"revised note"}`)
	assert.Equal(t, fiber.StatusOK, status)

	var reloaded model.ThesisComment
	require.NoError(t, db.First(&reloaded, "id = ?", "com-1").Error)
	assert.Equal(t, "revised note", reloaded.Content)
}
