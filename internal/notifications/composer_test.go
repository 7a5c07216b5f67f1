package notifications

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yechale/rollcall/internal/domain"
)

func testStudent() domain.Student {
	return domain.Student{
		Name:        "Abebe Bekele",
		Grade:       "Grade 4",
		ParentName:  "Bekele Tadesse",
		ParentEmail: "bekele@example.com",
		ParentPhone: "0911234567",
	}
}

func testSchool() domain.SchoolInfo {
	return domain.SchoolInfo{
		Name:  "Addis Primary",
		Phone: "+251111234567",
	}
}

func TestComposer_EmailAbsentWithNote(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	msg, err := composer.Email(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendanceAbsent,
		Note:    "Family emergency",
		School:  testSchool(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Addis Primary - Student Absence Notification: Abebe Bekele", msg.Subject)
	assert.Contains(t, msg.Text, "Dear Bekele Tadesse,")
	assert.Contains(t, msg.Text, "your child, Abebe Bekele, in Grade 4, was marked absent today")
	assert.Contains(t, msg.Text, "Reason: Family emergency")
	assert.Contains(t, msg.Text, "School Phone: +251111234567")
	assert.Contains(t, msg.Text, "Sincerely,\nAddis Primary")

	// HTML is the text rendition with line breaks swapped
	assert.Equal(t, strings.ReplaceAll(msg.Text, "\n", "<br>"), msg.HTML)
	assert.NotContains(t, msg.HTML, "\n")
}

func TestComposer_EmailOmitsEmptySections(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	msg, err := composer.Email(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendanceAbsent,
		School:  domain.SchoolInfo{Name: "Addis Primary"},
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.Text, "Reason:")
	assert.NotContains(t, msg.Text, "School Phone:")
}

func TestComposer_EmailSubjects(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	tests := []struct {
		status  domain.AttendanceStatus
		subject string
	}{
		{domain.AttendanceAbsent, "Addis Primary - Student Absence Notification: Abebe Bekele"},
		{domain.AttendanceLate, "Addis Primary - Student Late Arrival: Abebe Bekele"},
		{domain.AttendanceExcused, "Addis Primary - Excused Absence Confirmation: Abebe Bekele"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			msg, err := composer.Email(ComposeInput{
				Student: testStudent(),
				Status:  tt.status,
				School:  testSchool(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.subject, msg.Subject)
		})
	}
}

func TestComposer_SMS(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	text, err := composer.SMS(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendanceExcused,
		Note:    "Doctor visit",
		School:  testSchool(),
	})
	require.NoError(t, err)

	assert.Contains(t, text, "Dear Bekele Tadesse, your child Abebe Bekele (Grade 4) has been marked as excused absent today.")
	assert.Contains(t, text, "Reason: Doctor visit.")
	assert.Contains(t, text, "School: +251111234567.")
	assert.Contains(t, text, "Sincerely, Addis Primary")
	// SMS is a single paragraph
	assert.NotContains(t, text, "\n")
}

func TestComposer_SMSLateWithoutPhone(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	text, err := composer.SMS(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendanceLate,
		School:  domain.SchoolInfo{Name: "Addis Primary"},
	})
	require.NoError(t, err)

	assert.Contains(t, text, "arrived late today. Please ensure punctuality.")
	assert.NotContains(t, text, "School:")
}

func TestComposer_Deterministic(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	in := ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendanceAbsent,
		Note:    "sick",
		School:  testSchool(),
	}

	first, err := composer.Email(in)
	require.NoError(t, err)
	second, err := composer.Email(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposer_PresentHasNoTemplate(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	_, err = composer.Email(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendancePresent,
		School:  testSchool(),
	})
	require.Error(t, err)

	_, err = composer.SMS(ComposeInput{
		Student: testStudent(),
		Status:  domain.AttendancePresent,
		School:  testSchool(),
	})
	require.Error(t, err)
}
