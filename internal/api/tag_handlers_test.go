package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTag(t *testing.T, authHeader, name string) TagResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/tags", authHeader, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body TagResponse
	decodeBody(t, resp, &body)
	return body
}

func TestTagsRequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/tags")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/tags", map[string]any{"name": "Vegan"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateTag(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	tag := ts.createTag(t, authHeader, "Vegan")
	assert.NotZero(t, tag.ID)
	assert.Equal(t, "Vegan", tag.Name)
}

func TestCreateTagValidation(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	resp := ts.api.Post("/api/v1/tags", authHeader, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCreateTagDuplicateReturnsExisting(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	first := ts.createTag(t, authHeader, "Vegan")
	second := ts.createTag(t, authHeader, "Vegan")
	assert.Equal(t, first.ID, second.ID)
}

func TestListTagsOrdered(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	for _, name := range []string{"Breakfast", "Vegan", "Dessert"} {
		ts.createTag(t, authHeader, name)
	}

	resp := ts.api.Get("/api/v1/tags", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body []TagResponse
	decodeBody(t, resp, &body)
	require.Len(t, body, 3)
	assert.Equal(t, "Vegan", body[0].Name)
	assert.Equal(t, "Dessert", body[1].Name)
	assert.Equal(t, "Breakfast", body[2].Name)
}

func TestListTagsScopedToUser(t *testing.T) {
	ts := setupTestServer(t)
	authOne := ts.registerTestUser(t, "one@example.com", "testpass123")
	authTwo := ts.registerTestUser(t, "two@example.com", "testpass123")

	ts.createTag(t, authOne, "Vegan")

	resp := ts.api.Get("/api/v1/tags", authTwo)
	require.Equal(t, http.StatusOK, resp.Code)

	var body []TagResponse
	decodeBody(t, resp, &body)
	assert.Empty(t, body)
}

func TestListTagsAssignedOnly(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	ts.createTag(t, authHeader, "Unused")
	ts.createRecipe(t, authHeader, map[string]any{
		"title": "Curry",
		"price": "5.00",
		"tags":  []map[string]any{{"name": "Dinner"}},
	})

	resp := ts.api.Get("/api/v1/tags?assigned_only=1", authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body []TagResponse
	decodeBody(t, resp, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "Dinner", body[0].Name)
}

func TestUpdateTag(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	tag := ts.createTag(t, authHeader, "Vegan")

	resp := ts.api.Patch(fmt.Sprintf("/api/v1/tags/%d", tag.ID), authHeader, map[string]any{"name": "Vegetarian"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body TagResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, tag.ID, body.ID)
	assert.Equal(t, "Vegetarian", body.Name)
}

func TestUpdateTagWrongOwner(t *testing.T) {
	ts := setupTestServer(t)
	authOne := ts.registerTestUser(t, "one@example.com", "testpass123")
	authTwo := ts.registerTestUser(t, "two@example.com", "testpass123")

	tag := ts.createTag(t, authOne, "Vegan")

	resp := ts.api.Patch(fmt.Sprintf("/api/v1/tags/%d", tag.ID), authTwo, map[string]any{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestDeleteTag(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.registerTestUser(t, "test@example.com", "testpass123")

	tag := ts.createTag(t, authHeader, "Vegan")

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/tags/%d", tag.ID), authHeader)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	list := ts.api.Get("/api/v1/tags", authHeader)
	var body []TagResponse
	decodeBody(t, list, &body)
	assert.Empty(t, body)
}

func TestDeleteTagWrongOwner(t *testing.T) {
	ts := setupTestServer(t)
	authOne := ts.registerTestUser(t, "one@example.com", "testpass123")
	authTwo := ts.registerTestUser(t, "two@example.com", "testpass123")

	tag := ts.createTag(t, authOne, "Vegan")

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/tags/%d", tag.ID), authTwo)
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}
