package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/dlog/pkg/models"
)

// newTestBackend serves handler under /api and returns a client pointed at it.
func newTestBackend(t *testing.T, handler http.HandlerFunc) (*BackendClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendClient(srv.URL+"/api", "", srv.Client()), srv
}

func TestSubmitWorkUpdate_SendsDraftAndDecodesResult(t *testing.T) {
	var body map[string]any
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/work-updates", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"success":true,"message":"Saved","qualityScore":4.5,"redirectToFollowup":true}`)
	})

	res, err := client.SubmitWorkUpdate(context.Background(), models.WorkUpdateSubmission{
		WorkUpdateDraft: models.WorkUpdateDraft{UserID: "u1", Status: models.StatusWFH, Stack: "DevOps", Task: "Rotate keys"},
		Date:            "2024-06-03",
		SubmittedAt:     "2024-06-03T09:30:00.000Z",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Saved", res.Message)
	require.NotNil(t, res.QualityScore)
	assert.Equal(t, 4.5, *res.QualityScore)
	assert.True(t, res.RedirectToFollowup)

	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, "wfh", body["status"])
	assert.Equal(t, "Rotate keys", body["task"])
	assert.Equal(t, "2024-06-03", body["date"])
	assert.Equal(t, "2024-06-03T09:30:00.000Z", body["submittedAt"])
}

func TestSubmitWorkUpdate_RejectionBody(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Update already exists"}`)
	})

	res, err := client.SubmitWorkUpdate(context.Background(), models.WorkUpdateSubmission{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Update already exists", res.Message)
}

func TestSubmitWorkUpdate_FastAPIDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"User not found"}`, "User not found"},
		{"validation list", `{"detail":[{"loc":["body","task"],"msg":"field required"}]}`, "field required"},
		{"no detail", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tt.body)
			})
			res, err := client.SubmitWorkUpdate(context.Background(), models.WorkUpdateSubmission{})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Message)
		})
	}
}

func TestSubmitWorkUpdate_NonJSONIsError(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.SubmitWorkUpdate(context.Background(), models.WorkUpdateSubmission{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestSubmitWorkUpdate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewBackendClient(url+"/api", "", nil)
	_, err := client.SubmitWorkUpdate(context.Background(), models.WorkUpdateSubmission{})
	require.Error(t, err)
}

func TestStartFollowup(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/followups/start", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req["user_id"])
		_, _ = io.WriteString(w, `{"success":true,"sessionId":"abc","questions":["Q1","Q2"]}`)
	})

	st, err := client.StartFollowup(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, st.Success)
	assert.Equal(t, "abc", st.SessionID)
	assert.Equal(t, []string{"Q1", "Q2"}, st.Questions)
}

func TestCompleteFollowup(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/followup/s 1/complete", r.URL.Path)
		var req completeFollowupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserID)
		assert.Equal(t, []string{"a1", "a2"}, req.Answers)
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	})

	ack, err := client.CompleteFollowup(context.Background(), "s 1", "u1", []string{"a1", "a2"})
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, "ok", ack.Message)
}

func TestWeeklyReport(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/weekly", r.URL.Path)
		var req weeklyReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, weeklyReportRequest{UserID: "u1", StartDate: "2024-06-03", EndDate: "2024-06-10"}, req)
		_, _ = io.WriteString(w, `{
			"success": true,
			"report": "Good week.",
			"metadata": {
				"date_range": {"start": "2024-06-03", "end": "2024-06-10"},
				"data_summary": {"work_updates_count": 5},
				"generated_at": "2024-06-10T15:00:00"
			}
		}`)
	})

	resp, err := client.WeeklyReport(context.Background(), "u1", models.DateRange{Start: "2024-06-03", End: "2024-06-10"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Good week.", resp.Report)
	assert.Equal(t, "2024-06-03", resp.Metadata.DateRange.Start)
	require.NotNil(t, resp.Metadata.DataSummary)
	require.NotNil(t, resp.Metadata.DataSummary.WorkUpdatesCount)
	assert.Equal(t, 5, *resp.Metadata.DataSummary.WorkUpdatesCount)
	assert.Nil(t, resp.Metadata.DataSummary.FollowupSessionsCount)
}

func TestHealth(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"healthy","database":"connected","lm_studio":"connected"}`)
	})

	hs, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, hs.Healthy())
	assert.Equal(t, "connected", hs.Database)
}

func TestDeriveHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8000/health", deriveHealthURL("http://localhost:8000/api"))
	assert.Equal(t, "https://example.com/health", deriveHealthURL("https://example.com/v1/api"))
}

func TestNewBackendClient_TrimsBaseURL(t *testing.T) {
	c := NewBackendClient("http://localhost:8000/api/", "", nil)
	assert.Equal(t, "http://localhost:8000/api", c.BaseURL())
}
