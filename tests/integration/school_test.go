//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yechale/rollcall/internal/testutil"
)

func TestSettings_DefaultsBeforeFirstSave(t *testing.T) {
	// Other tests may have saved settings already; start from a clean slate
	_, err := testDB.Exec(context.Background(), "DELETE FROM school_settings")
	require.NoError(t, err)

	client := newTestClient(t)

	resp, err := client.GET("/api/v1/settings")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			SchoolName string `json:"school_name"`
			SendEmail  bool   `json:"send_email"`
			SendSMS    bool   `json:"send_sms"`
			AutoSend   bool   `json:"auto_send"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, "Smart Attendance Tracker", result.Data.SchoolName)
	assert.True(t, result.Data.SendEmail)
	assert.True(t, result.Data.SendSMS)
	assert.False(t, result.Data.AutoSend)
}

func TestSettings_SaveAndReadBack(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.PUT("/api/v1/settings", map[string]interface{}{
		"school_name":        "Addis Primary School",
		"school_phone":       "+251111234567",
		"notification_email": "office@addisprimary.edu.et",
		"academic_year":      "2025/26",
		"send_email":         true,
		"send_sms":           false,
		"auto_send":          false,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.GET("/api/v1/settings")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			SchoolName  string `json:"school_name"`
			SchoolPhone string `json:"school_phone"`
			SendEmail   bool   `json:"send_email"`
			SendSMS     bool   `json:"send_sms"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, "Addis Primary School", result.Data.SchoolName)
	assert.Equal(t, "+251111234567", result.Data.SchoolPhone)
	assert.True(t, result.Data.SendEmail)
	assert.False(t, result.Data.SendSMS)
}

func TestSettings_RejectsInvalidEmail(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.PUT("/api/v1/settings", map[string]interface{}{
		"school_name":        "Addis Primary School",
		"notification_email": "not-an-email",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestStudents_CRUD(t *testing.T) {
	client := newTestClient(t)

	studentID := testutil.RandomID("S")
	resp, err := client.POST("/api/v1/students", map[string]interface{}{
		"name":         "abebe bekele",
		"student_id":   studentID,
		"grade":        "Grade 4",
		"section":      "A",
		"parent_name":  "bekele tadesse",
		"parent_email": "bekele@example.com",
		"parent_phone": "0911234567",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			ParentName string `json:"parent_name"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &created)
	require.NotEmpty(t, created.Data.ID)

	// Names are normalized to title case on write
	assert.Equal(t, "Abebe Bekele", created.Data.Name)
	assert.Equal(t, "Bekele Tadesse", created.Data.ParentName)

	resp, err = client.GET("/api/v1/students/" + created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched struct {
		Data struct {
			StudentID string `json:"student_id"`
			Grade     string `json:"grade"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &fetched)
	assert.Equal(t, studentID, fetched.Data.StudentID)
	assert.Equal(t, "Grade 4", fetched.Data.Grade)

	resp, err = client.PUT("/api/v1/students/"+created.Data.ID, map[string]interface{}{
		"name":         "Abebe Bekele",
		"student_id":   studentID,
		"grade":        "Grade 5",
		"section":      "B",
		"parent_name":  "Bekele Tadesse",
		"parent_email": "bekele@example.com",
		"parent_phone": "0911234567",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		Data struct {
			Grade   string `json:"grade"`
			Section string `json:"section"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &updated)
	assert.Equal(t, "Grade 5", updated.Data.Grade)
	assert.Equal(t, "B", updated.Data.Section)

	resp, err = client.DELETE("/api/v1/students/" + created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.GET("/api/v1/students/" + created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStudents_DuplicateStudentIDConflicts(t *testing.T) {
	client := newTestClient(t)

	_, studentID := createTestStudent(t, client, "First Student")

	payload := studentPayload("Second Student")
	payload["student_id"] = studentID

	resp, err := client.POST("/api/v1/students", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestStudents_ListFiltersByGradeAndSection(t *testing.T) {
	client := newTestClient(t)

	grade := "Grade " + testutil.RandomID("F")
	createTestStudent(t, client, "Filter Match One", withGrade(grade), withSection("A"))
	createTestStudent(t, client, "Filter Match Two", withGrade(grade), withSection("B"))
	createTestStudent(t, client, "Filter Other Grade")

	resp, err := client.GET("/api/v1/students?grade=" + url.QueryEscape(grade))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []struct {
			Name    string `json:"name"`
			Grade   string `json:"grade"`
			Section string `json:"section"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 2)
	for _, s := range result.Data {
		assert.Equal(t, grade, s.Grade)
	}

	resp, err = client.GET("/api/v1/students?grade=" + url.QueryEscape(grade) + "&section=B")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result.Data = nil
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Filter Match Two", result.Data[0].Name)
}

func TestStudents_ValidationErrors(t *testing.T) {
	client := newTestClientWithoutValidation()

	// Missing required fields
	resp, err := client.POST("/api/v1/students", map[string]interface{}{
		"name": "No Student ID",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Malformed parent email
	payload := studentPayload("Bad Email")
	payload["parent_email"] = "not-an-email"
	resp, err = client.POST("/api/v1/students", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
