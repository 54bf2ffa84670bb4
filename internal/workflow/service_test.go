package workflow

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
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

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()

	now := time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC)
	svc := NewService(setupTestDB(t), WithClock(func() time.Time { return now }))

	return svc, &now
}

func validDraft(title string) Draft {
	return Draft{
		Title:       title,
		Description: "Handles QA tickets automatically",
		Actions:     []string{"Send Notification"},
	}
}

func TestCreateCommitsDraft(t *testing.T) {
	svc, now := newTestService(t)

	created, fieldErrors, err := svc.Create(validDraft("QA Bot"))
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)

	// identity is clock-derived, counters start at zero, disabled
	// drafts commit with Draft status
	assert.Equal(t, now.UnixMilli(), created.ID)
	assert.EqualValues(t, 0, created.Executions)
	assert.EqualValues(t, 0, created.SuccessRate)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.Equal(t, []string{"Send Notification"}, created.Actions)
	assert.Empty(t, created.Triggers)
}

func TestCreateEnabledIsActive(t *testing.T) {
	svc, _ := newTestService(t)

	draft := validDraft("Nightly Index Refresh")
	draft.Enabled = true

	created, _, err := svc.Create(draft)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, created.Status)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	svc, _ := newTestService(t)

	_, fieldErrors, err := svc.Create(Draft{Title: "ab", Description: "short"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.Classify(err))
	assert.Equal(t, MsgTitleTooShort, fieldErrors["title"])
	assert.Equal(t, MsgDescriptionTooShort, fieldErrors["description"])

	list, listErr := svc.List()
	require.NoError(t, listErr)
	assert.Empty(t, list, "nothing may be committed on validation failure")
}

func TestCreateRejectsDuplicateTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Create(validDraft("Research Pipeline"))
	require.NoError(t, err)

	_, fieldErrors, err := svc.Create(validDraft("research pipeline"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindDuplicate, apperr.Classify(err))
	assert.Equal(t, MsgTitleDuplicate, fieldErrors["title"])
}

func TestListNewestFirst(t *testing.T) {
	svc, now := newTestService(t)

	_, _, err := svc.Create(validDraft("First"))
	require.NoError(t, err)

	*now = now.Add(time.Second)
	_, _, err = svc.Create(validDraft("Second"))
	require.NoError(t, err)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)
	assert.Equal(t, "First", list[1].Title)
}

func TestIDsStayDistinctWithinOneMillisecond(t *testing.T) {
	svc, _ := newTestService(t)

	a, _, err := svc.Create(validDraft("One Workflow"))
	require.NoError(t, err)

	// clock does not advance between commits
	b, _, err := svc.Create(validDraft("Two Workflow"))
	require.NoError(t, err)

	assert.Greater(t, b.ID, a.ID)
}

func TestUpdateKeepsIdentityAndAllowsOwnTitle(t *testing.T) {
	svc, _ := newTestService(t)

	created, _, err := svc.Create(validDraft("Research Pipeline"))
	require.NoError(t, err)

	// keeping its own title is not a duplicate when editing
	draft := validDraft("Research Pipeline")
	draft.Schedule = "daily"
	updated, fieldErrors, err := svc.Update(created.ID, draft)
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "daily", updated.Schedule)
}

func TestUpdateRejectsOtherRecordsTitle(t *testing.T) {
	svc, now := newTestService(t)

	_, _, err := svc.Create(validDraft("Research Pipeline"))
	require.NoError(t, err)

	*now = now.Add(time.Second)
	second, _, err := svc.Create(validDraft("Citation Tracker"))
	require.NoError(t, err)

	_, fieldErrors, err := svc.Update(second.ID, validDraft("Research Pipeline"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindDuplicate, apperr.Classify(err))
	assert.Equal(t, MsgTitleDuplicate, fieldErrors["title"])
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Update(12345, validDraft("Whatever Title"))
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)

	created, _, err := svc.Create(validDraft("Short Lived"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))
	require.Error(t, svc.Delete(created.ID))

	list, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordRun(t *testing.T) {
	svc, _ := newTestService(t)

	created, _, err := svc.Create(validDraft("Run Counter"))
	require.NoError(t, err)

	updated, err := svc.RecordRun(created.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated.Executions)
	assert.EqualValues(t, 100, updated.SuccessRate)

	updated, err = svc.RecordRun(created.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Executions)
	assert.EqualValues(t, 50, updated.SuccessRate)
}

func TestValidateEndpointHelper(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Create(validDraft("Research Pipeline"))
	require.NoError(t, err)

	msg, err := svc.Validate("title", "research pipeline", 0)
	require.NoError(t, err)
	assert.Equal(t, MsgTitleDuplicate, msg)

	msg, err = svc.Validate("title", "", 0)
	require.NoError(t, err)
	assert.Equal(t, MsgTitleRequired, msg)
}
