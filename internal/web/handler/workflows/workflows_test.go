package workflows

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
	"github.com/ai-scholar/scholar-admin/internal/workflow"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Workflow{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func newTestApp(t *testing.T) (*fiber.App, *workflow.Service) {
	t.Helper()

	current := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}

	svc := workflow.NewService(setupTestDB(t), workflow.WithClock(clock))

	app := fiber.New()
	service := &Service{}
	require.NoError(t, service.Init(app, &config.Config{}, svc))

	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeWorkflow(t *testing.T, resp *http.Response) models.Workflow {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var committed models.Workflow
	require.NoError(t, json.Unmarshal(body, &committed))

	return committed
}

func TestService_Create(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path, `{
		"title": "QA Bot",
		"description": "Runs the regression suite on every upload",
		"template": "custom",
		"triggers": ["document-upload"],
		"actions": ["run-analysis"],
		"enabled": false
	}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	committed := decodeWorkflow(t, resp)
	assert.Equal(t, "QA Bot", committed.Title)
	assert.Equal(t, models.WorkflowStatusDraft, committed.Status)
	assert.Zero(t, committed.Executions)
	assert.Zero(t, committed.SuccessRate)
	assert.NotZero(t, committed.ID)
}

func TestService_Create_ValidationFailure(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path, `{"title": "ab", "description": "too short"}`)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Kind   string            `json:"kind"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, "validation", envelope.Kind)
	assert.Equal(t, workflow.MsgTitleTooShort, envelope.Fields["title"])
	assert.Equal(t, workflow.MsgDescriptionTooShort, envelope.Fields["description"])
}

func TestService_Create_DuplicateTitle(t *testing.T) {
	app, _ := newTestApp(t)

	draft := `{"title": "Citation Monitor", "description": "Watches new citations of tracked papers"}`

	resp := postJSON(t, app, Path, draft)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, app, Path, draft)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, workflow.MsgTitleDuplicate, envelope.Fields["title"])
}

func TestService_List_NewestFirst(t *testing.T) {
	app, _ := newTestApp(t)

	for _, title := range []string{"First Workflow", "Second Workflow"} {
		resp := postJSON(t, app, Path,
			fmt.Sprintf(`{"title": %q, "description": "Numbered for ordering checks"}`, title))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil))
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var list []models.Workflow
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Second Workflow", list[0].Title)
	assert.Equal(t, "First Workflow", list[1].Title)
}

func TestService_ValidateField(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path+"/validate", `{"field": "title", "value": ""}`)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result fieldCheckResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Valid)
	assert.Equal(t, workflow.MsgTitleRequired, result.Message)
}

func TestService_Update(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path, `{"title": "Digest Builder", "description": "Assembles the weekly digest"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	committed := decodeWorkflow(t, resp)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("%s/%d", Path, committed.ID),
		strings.NewReader(`{"title": "Digest Builder", "description": "Assembles and mails the weekly digest", "enabled": true}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	updateResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, updateResp.StatusCode)

	updated := decodeWorkflow(t, updateResp)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)
	assert.Equal(t, committed.ID, updated.ID)
}

func TestService_Delete(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path, `{"title": "Disposable Workflow", "description": "Exists only to be removed"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	committed := decodeWorkflow(t, resp)

	delResp, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("%s/%d", Path, committed.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, delResp.StatusCode)

	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("%s/%d", Path, committed.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, getResp.StatusCode)
}

func TestService_Run(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, Path, `{"title": "Index Refresher", "description": "Reindexes the document corpus"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	committed := decodeWorkflow(t, resp)

	runPath := fmt.Sprintf("%s/%d/run", Path, committed.ID)

	first := postJSON(t, app, runPath, `{"success": true}`)
	assert.Equal(t, fiber.StatusOK, first.StatusCode)
	afterFirst := decodeWorkflow(t, first)
	assert.EqualValues(t, 1, afterFirst.Executions)
	assert.InDelta(t, 100, afterFirst.SuccessRate, 0.01)

	second := postJSON(t, app, runPath, `{"success": false}`)
	assert.Equal(t, fiber.StatusOK, second.StatusCode)
	afterSecond := decodeWorkflow(t, second)
	assert.EqualValues(t, 2, afterSecond.Executions)
	assert.InDelta(t, 50, afterSecond.SuccessRate, 0.01)
}

func TestService_BadID(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path+"/not-a-number", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
