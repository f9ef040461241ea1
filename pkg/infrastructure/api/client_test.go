package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/application/services/allocation"
	"github.com/vsinha/subsidy/pkg/application/services/submission"
	"github.com/vsinha/subsidy/pkg/domain/entities"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", time.Second, nil)
}

func TestClient_ListInventoryItems(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":1,"itemName":"Fertilizer","unit":"bag","onHand":50,"reserved":"10"}]`},
		{"data envelope", `{"data":[{"id":1,"itemName":"Fertilizer","unit":"bag","onHand":50,"reserved":"10"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/inventory/items", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})

			items, err := client.ListInventoryItems(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, entities.InventoryID(1), items[0].ID)
			assert.True(t, items[0].AvailableStock().Equal(decimal.NewFromInt(40)))
		})
	}
}

func TestClient_SearchBeneficiaries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/beneficiaries", r.URL.Path)
		assert.Equal(t, "dela cruz", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `[{"id":"12","name":"Juan Dela Cruz","rsbsaNumber":"03-01","address":"Purok 1","commodity":"Rice","hectares":1.25},{"id":13,"name":"Ana Dela Cruz"}]`)
	})

	results, err := client.SearchBeneficiaries(context.Background(), "dela cruz")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, entities.BeneficiaryID(12), results[0].ID)
	assert.Equal(t, entities.BeneficiaryID(13), results[1].ID)
	assert.True(t, results[0].Hectares.Equal(decimal.RequireFromString("1.25")))
}

func TestClient_ListErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"maintenance"}`)
	})

	_, err := client.ListInventoryItems(context.Background())
	var respErr *entities.ResponseError
	require.True(t, errors.As(err, &respErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, respErr.StatusCode)
	assert.Equal(t, "maintenance", respErr.Message)
}

func sampleSubmission() entities.ProgramSubmission {
	return entities.ProgramSubmission{
		Title:     "Wet season",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-30",
		Beneficiaries: []entities.BeneficiarySubmission{{
			BeneficiaryID: 12,
			Items: []entities.ItemSubmission{
				{ItemName: "Fertilizer", Quantity: json.Number("2"), Unit: "bag", InventoryID: entities.SomeInventoryID(1)},
				{ItemName: "Cash aid", Quantity: json.Number("1"), Unit: "php", AssistanceType: entities.Cash},
			},
		}},
	}
}

func TestClient_CreateProgram_Created(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subsidy-programs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		beneficiaries := body["beneficiaries"].([]interface{})
		first := beneficiaries[0].(map[string]interface{})
		assert.Equal(t, float64(12), first["beneficiaryId"])
		items := first["items"].([]interface{})
		assert.Equal(t, float64(1), items[0].(map[string]interface{})["inventoryId"])
		assert.Nil(t, items[1].(map[string]interface{})["inventoryId"])
		assert.Equal(t, "cash", items[1].(map[string]interface{})["assistanceType"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"program":{"id":41,"title":"Wet season","status":"pending"}}`)
	})

	created, err := client.CreateProgram(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, entities.ProgramID("41"), created.ID)
	assert.Equal(t, "pending", created.Status)
}

func TestClient_CreateProgram_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "conflict",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Insufficient stock for some items","conflicts":[{"itemName":"Fertilizer","unit":"bag","required":60,"available":50,"shortage":10}]}`,
			check: func(t *testing.T, err error) {
				var conflict *entities.ConflictError
				require.True(t, errors.As(err, &conflict), "got %v", err)
				require.Len(t, conflict.Conflicts, 1)
				assert.True(t, conflict.Conflicts[0].Shortage.Equal(decimal.NewFromInt(10)))
			},
		},
		{
			name:   "field errors",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"The given data was invalid.","errors":{"title":["The title field is required."]}}`,
			check: func(t *testing.T, err error) {
				var fields *entities.FieldValidationError
				require.True(t, errors.As(err, &fields), "got %v", err)
				assert.Equal(t, "title: The title field is required.", fields.Summary())
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, err error) {
				var respErr *entities.ResponseError
				require.True(t, errors.As(err, &respErr), "got %v", err)
				assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
				assert.Empty(t, respErr.Message)
			},
		},
		{
			name:   "rejection with unreadable body",
			status: http.StatusUnprocessableEntity,
			body:   `<html>validation failed</html>`,
			check: func(t *testing.T, err error) {
				var respErr *entities.ResponseError
				require.True(t, errors.As(err, &respErr), "got %v", err)
				assert.Equal(t, http.StatusUnprocessableEntity, respErr.StatusCode)
				assert.Empty(t, respErr.Message)
			},
		},
		{
			name:   "rejection with message only",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Program period overlaps an active program"}`,
			check: func(t *testing.T, err error) {
				var respErr *entities.ResponseError
				require.True(t, errors.As(err, &respErr), "got %v", err)
				assert.Equal(t, http.StatusUnprocessableEntity, respErr.StatusCode)
				assert.Equal(t, "Program period overlaps an active program", respErr.Message)
			},
		},
		{
			name:   "created without program",
			status: http.StatusCreated,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				var respErr *entities.ResponseError
				require.True(t, errors.As(err, &respErr), "got %v", err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.CreateProgram(context.Background(), sampleSubmission())
			tt.check(t, err)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL, time.Second, nil)
	server.Close()

	_, err := client.CreateProgram(context.Background(), sampleSubmission())
	require.Error(t, err)
	var respErr *entities.ResponseError
	assert.False(t, errors.As(err, &respErr))
}

func TestClient_UnreadableRejectionSettlesWithGenericMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"unreadable body", `not json`, submission.GenericFailureMessage},
		{"message only", `{"message":"Program period overlaps an active program"}`, "Program period overlaps an active program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tt.body)
			})

			store := allocation.NewStore(nil, nil)
			require.NoError(t, store.SetMeta(entities.ProgramMeta{
				Title:     "Wet season",
				StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			}))
			_, err := store.AddItem(entities.ItemSpec{ItemName: "Training", Unit: "session", AssistanceType: entities.Service})
			require.NoError(t, err)
			require.NoError(t, store.AddBeneficiary(entities.Beneficiary{ID: 1, Name: "Juan Dela Cruz"}))
			require.NoError(t, store.SetQuantity(0, 0, "1"))

			reconciler := submission.NewReconciler(store, client, nil, nil, nil)
			outcome, err := reconciler.Submit(context.Background())

			assert.ErrorIs(t, err, submission.ErrSubmissionFailed)
			assert.Equal(t, dto.OutcomeFailed, outcome.Kind)
			assert.Equal(t, tt.expected, outcome.Message)
			assert.Equal(t, 1, store.Draft().BeneficiaryCount())
		})
	}
}
