//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yechale/rollcall/internal/testutil"
)

// studentPayload is a minimal valid student with both parent contacts set,
// so either notification channel can deliver.
func studentPayload(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"student_id":   testutil.RandomID("S"),
		"grade":        "Grade 4",
		"section":      "A",
		"parent_name":  "Bekele Tadesse",
		"parent_email": "bekele@example.com",
		"parent_phone": "0911234567",
	}
}

type studentOption func(map[string]interface{})

func withGrade(grade string) studentOption {
	return func(m map[string]interface{}) {
		m["grade"] = grade
	}
}

func withSection(section string) studentOption {
	return func(m map[string]interface{}) {
		m["section"] = section
	}
}

func withParentPhone(phone string) studentOption {
	return func(m map[string]interface{}) {
		m["parent_phone"] = phone
	}
}

func withParentEmail(email string) studentOption {
	return func(m map[string]interface{}) {
		m["parent_email"] = email
	}
}

// createTestStudent creates a student and returns its internal ID and
// roster student_id. The student is deleted at test cleanup.
func createTestStudent(t *testing.T, client *testutil.Client, name string, opts ...studentOption) (id, studentID string) {
	t.Helper()

	payload := studentPayload(name)
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.POST("/api/v1/students", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID        string `json:"id"`
			StudentID string `json:"student_id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	t.Cleanup(func() {
		resp, err := testutil.NewClient(testServer.URL).DELETE("/api/v1/students/" + result.Data.ID)
		if err == nil {
			resp.Body.Close()
		}
	})

	return result.Data.ID, result.Data.StudentID
}

// markAttendance marks a student and requires success.
func markAttendance(t *testing.T, client *testutil.Client, studentID, date, status, note string) {
	t.Helper()

	resp, err := client.POST("/api/v1/attendance", map[string]string{
		"student_id": studentID,
		"date":       date,
		"status":     status,
		"note":       note,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// setConnectivity flips the connectivity signal and requires success.
func setConnectivity(t *testing.T, client *testutil.Client, online bool) {
	t.Helper()

	resp, err := client.PUT("/api/v1/connectivity", map[string]bool{"online": online})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// queueSize reads the pending retry queue size over the API.
func queueSize(t *testing.T, client *testutil.Client) int {
	t.Helper()

	resp, err := client.GET("/api/v1/notifications/queue")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Size int `json:"size"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.Size
}
