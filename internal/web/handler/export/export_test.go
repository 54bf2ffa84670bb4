package export

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/store"
)

// memStore is a minimal in-memory blob store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}

	return value, nil
}

func (m *memStore) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)

	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *memStore) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func newTestApp(t *testing.T) (*fiber.App, *settings.Repository) {
	t.Helper()

	fixed := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	repo := settings.NewRepository(
		&memStore{data: map[string][]byte{}},
		settings.WithClock(func() time.Time { return fixed }),
	)
	repo.Load()
	t.Cleanup(repo.Close)

	app := fiber.New()
	service := &Service{}
	require.NoError(t, service.Init(app, &config.Config{}, repo))

	return app, repo
}

func TestService_Get_Download(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.Header.Set(fiber.HeaderUserAgent, "scholar-test/1.0")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t,
		`attachment; filename="ai-scholar-settings-2026-08-23.json"`,
		resp.Header.Get(fiber.HeaderContentDisposition))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var file settings.ExportFile
	require.NoError(t, json.Unmarshal(body, &file))
	assert.Equal(t, settings.ExportVersion, file.Version)
	assert.Equal(t, "scholar-test/1.0", file.Metadata.UserAgent)
	assert.Equal(t, "dark", file.Settings.Theme)
}

func TestService_Post_RoundTrip(t *testing.T) {
	app, repo := newTestApp(t)

	_, err := repo.Update(func(record *settings.Settings) {
		record.Theme = "light"
	})
	require.NoError(t, err)

	exported := repo.Export("scholar-test/1.0")
	payload, err := json.Marshal(exported)
	require.NoError(t, err)

	require.NoError(t, repo.Reset())
	require.Equal(t, "dark", repo.Settings().Theme)

	req := httptest.NewRequest(http.MethodPost, ImportPath, strings.NewReader(string(payload)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "light", repo.Settings().Theme)
}

func TestService_Post_RejectsBadFile(t *testing.T) {
	app, _ := newTestApp(t)

	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{broken"},
		{name: "wrong version", body: `{"version": "9.9", "settings": {}}`},
		{name: "invalid settings", body: `{"version": "1.0", "settings": {"theme": "neon"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, ImportPath, strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}
