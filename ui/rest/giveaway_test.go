package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-giveaway/config"
	"github.com/AzielCF/az-giveaway/core/database"
	"github.com/AzielCF/az-giveaway/repository"
	"github.com/AzielCF/az-giveaway/ui/rest/middleware"
	"github.com/AzielCF/az-giveaway/usecase"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}}
	db, err := database.NewDatabaseWithCustomPath(cfg, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	repo := repository.NewGiveawayRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	app := fiber.New()
	app.Use(middleware.Recovery())

	api := app.Group("/api")
	InitRestGiveaway(api, usecase.NewGiveawayUsecase(repo, nil))
	InitRestHealth(api, db)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createPayload() map[string]any {
	return map[string]any{
		"user_id":      int64(1),
		"title":        "Mega Gold Giveaway",
		"organizer":    "Sunway Lagoon",
		"platform":     "Facebook",
		"deadline":     time.Now().AddDate(0, 1, 0).Format("02/01/2006 15:04"),
		"prize":        "RM1,000",
		"requirements": "Follow, Like, Comment",
	}
}

func TestCreateAndListGiveaways(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/giveaways", createPayload())
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "SUCCESS", body["code"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/giveaways?user_id=1", nil)
	assert.Equal(t, 200, resp.StatusCode)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "Mega Gold Giveaway", first["title"])
}

func TestCreateRequiresUserID(t *testing.T) {
	app := newTestApp(t)

	payload := createPayload()
	delete(payload, "user_id")

	resp, body := doJSON(t, app, http.MethodPost, "/api/giveaways", payload)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestGetUnknownGiveawayIs404(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/giveaways/999?user_id=1", nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND_ERROR", body["code"])
}

func TestResultAndStatsEndpoints(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/api/giveaways", createPayload())
	id := int(body["results"].(map[string]any)["id"].(float64))

	resp, _ := doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/giveaways/%d/result?user_id=1", id),
		map[string]any{"result": "won"})
	assert.Equal(t, 200, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/stats?user_id=1", nil)
	assert.Equal(t, 200, resp.StatusCode)
	stats := body["results"].(map[string]any)
	assert.Equal(t, float64(1), stats["won"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/analytics?user_id=1", nil)
	assert.Equal(t, 200, resp.StatusCode)
	platforms := body["results"].(map[string]any)["platforms"].([]any)
	require.Len(t, platforms, 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/year?user_id=1", nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestInvalidResultRejected(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/api/giveaways", createPayload())
	id := int(body["results"].(map[string]any)["id"].(float64))

	resp, body := doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/giveaways/%d/result?user_id=1", id),
		map[string]any{"result": "maybe"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestDeleteGiveaway(t *testing.T) {
	app := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/api/giveaways", createPayload())
	id := int(body["results"].(map[string]any)["id"].(float64))

	resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/giveaways/%d?user_id=1", id), nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/giveaways/%d?user_id=1", id), nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, 200, resp.StatusCode)
	results := body["results"].(map[string]any)
	assert.Equal(t, "up", results["database"])
}