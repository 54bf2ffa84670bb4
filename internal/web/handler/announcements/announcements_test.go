package announcements

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-scholar/scholar-admin/internal/announce"
	"github.com/ai-scholar/scholar-admin/internal/config"
)

func newTestApp(t *testing.T, announcer *announce.Announcer) *fiber.App {
	t.Helper()

	app := fiber.New()
	service := &Service{}
	require.NoError(t, service.Init(app, &config.Config{}, announcer))

	return app
}

func getMessages(t *testing.T, app *fiber.App) []announce.Announcement {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil))
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var list []announce.Announcement
	require.NoError(t, json.Unmarshal(body, &list))

	return list
}

func TestService_Get(t *testing.T) {
	announcer := announce.New()
	app := newTestApp(t, announcer)

	announcer.Info("Settings saved successfully.")
	announcer.Error("Storage is full. Free up some space and try again.")

	list := getMessages(t, app)
	require.Len(t, list, 2)
	assert.Equal(t, announce.SeverityInfo, list[0].Severity)
	assert.Equal(t, announce.SeverityError, list[1].Severity)
}

func TestService_Get_ExpiredArePruned(t *testing.T) {
	current := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	announcer := announce.New(announce.WithClock(func() time.Time { return current }))
	app := newTestApp(t, announcer)

	announcer.Info("Settings saved successfully.")

	current = current.Add(announce.DefaultTTL + time.Second)

	assert.Empty(t, getMessages(t, app))
}

func TestService_Dismiss(t *testing.T) {
	announcer := announce.New()
	app := newTestApp(t, announcer)

	announcer.Info("Settings saved successfully.")
	list := getMessages(t, app)
	require.Len(t, list, 1)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, Path+"/"+list[0].ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Empty(t, getMessages(t, app))
}

func TestService_Dismiss_UnknownID(t *testing.T) {
	app := newTestApp(t, announce.New())

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, Path+"/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
