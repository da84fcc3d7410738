package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func darkMode(t *testing.T, w *httptest.ResponseRecorder) bool {
	t.Helper()
	var resp struct {
		Data struct {
			DarkMode bool `json:"dark_mode"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.DarkMode
}

func TestPreferencesHandler_Toggle(t *testing.T) {
	prefs := &fakePrefs{}
	handler := NewPreferencesHandler(prefs)

	w := httptest.NewRecorder()
	handler.ToggleDarkMode(w, httptest.NewRequest("POST", "/api/preferences/dark-mode/toggle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, darkMode(t, w))

	w = httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/preferences", nil))
	assert.True(t, darkMode(t, w))
}

func TestPreferencesHandler_Set(t *testing.T) {
	prefs := &fakePrefs{dark: true}
	handler := NewPreferencesHandler(prefs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/preferences/dark-mode", bytes.NewBufferString(`{"enabled": false}`))
	handler.SetDarkMode(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, prefs.dark)
}

func TestPreferencesHandler_SetMissingField(t *testing.T) {
	handler := NewPreferencesHandler(&fakePrefs{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/preferences/dark-mode", bytes.NewBufferString(`{}`))
	handler.SetDarkMode(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferencesHandler_PersistFailure(t *testing.T) {
	handler := NewPreferencesHandler(&fakePrefs{err: errDiskFull})

	w := httptest.NewRecorder()
	handler.ToggleDarkMode(w, httptest.NewRequest("POST", "/api/preferences/dark-mode/toggle", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
