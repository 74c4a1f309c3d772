package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
  {
    "key": "tblHolidays",
    "displayName": "Holidays",
    "idColumn": "holidayID",
    "columns": [
      {"name": "holidayName", "label": "Holiday Name", "type": "nvarchar", "required": true, "maxLength": 50},
      {"name": "holidayDate", "label": "Date", "type": "date", "required": true},
      {"name": "recurring", "label": "Recurring", "type": "bit"}
    ]
  }
]`

func TestCatalogFetchAndCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/catalog", r.URL.Path)
		w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	descriptors, err := client.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "tblHolidays", descriptors[0].Key)
	assert.Equal(t, columnText, descriptors[0].Columns[0].Type)
	assert.Equal(t, columnDate, descriptors[0].Columns[1].Type)
	assert.Equal(t, columnBoolean, descriptors[0].Columns[2].Type)

	_, err = client.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second catalog read comes from the cache")
}

func TestListRowsIsNeverCached(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/tables/tblHolidays", r.URL.Path)
		w.Write([]byte(`[{"holidayID": 1, "holidayName": "New Year"}]`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	for i := 0; i < 2; i++ {
		rows, err := client.ListRows(context.Background(), "tblHolidays")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "New Year", rows[0]["holidayName"])
	}
	assert.Equal(t, 2, hits)
}

func TestCreateRowSendsExactDraft(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tables/tblHolidays", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	draft := map[string]any{
		"holidayName": "New Year",
		"holidayDate": "2025-01-01",
		"recurring":   true,
	}
	client := newAPIClient(server.URL)
	require.NoError(t, client.CreateRow(context.Background(), "tblHolidays", draft))

	require.Len(t, got, 3, "body carries exactly the declared columns")
	assert.Equal(t, "New Year", got["holidayName"])
	assert.Equal(t, true, got["recurring"])
}

func TestUpdateRowTargetsRowPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tables/tblHolidays/12", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	err := client.UpdateRow(context.Background(), "tblHolidays", "12", map[string]any{"holidayName": "Eid"})
	assert.NoError(t, err)
}

func TestDeleteRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tables/tblHolidays/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	assert.NoError(t, client.DeleteRow(context.Background(), "tblHolidays", "7"))
}

func TestServerErrorEnvelopeSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Holiday name is required"}`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	err := client.CreateRow(context.Background(), "tblHolidays", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "Holiday name is required", err.Error())
}

func TestNonJSONErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>Internal Server Error</html>"))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)

	err := client.CreateRow(context.Background(), "tblHolidays", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, fallbackSaveError, err.Error())

	err = client.DeleteRow(context.Background(), "tblHolidays", "1")
	require.Error(t, err)
	assert.Equal(t, fallbackDeleteError, err.Error())
}

func TestGetRetriesTransientStatus(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	rows, err := client.ListRows(context.Background(), "tblHolidays")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 2, hits)
}

func TestMutationIsNotRetried(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "busy"}`))
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	err := client.CreateRow(context.Background(), "tblHolidays", map[string]any{"holidayName": "X"})
	require.Error(t, err)
	assert.Equal(t, 1, hits, "writes go out exactly once")
}
