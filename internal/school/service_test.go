package school

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yechale/rollcall/internal/domain"
)

type fakeRepository struct {
	settings *domain.SchoolSettings
	students map[string]*domain.Student
	nextID   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{students: make(map[string]*domain.Student)}
}

func (r *fakeRepository) GetSettings(context.Context) (*domain.SchoolSettings, error) {
	if r.settings == nil {
		return nil, ErrSettingsNotFound
	}
	copied := *r.settings
	return &copied, nil
}

func (r *fakeRepository) SaveSettings(_ context.Context, settings *domain.SchoolSettings) error {
	copied := *settings
	r.settings = &copied
	return nil
}

func (r *fakeRepository) CreateStudent(_ context.Context, student *domain.Student) error {
	r.nextID++
	student.ID = string(rune('a' + r.nextID))
	copied := *student
	r.students[student.ID] = &copied
	return nil
}

func (r *fakeRepository) GetStudent(_ context.Context, id string) (*domain.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	copied := *student
	return &copied, nil
}

func (r *fakeRepository) GetStudentByStudentID(_ context.Context, studentID string) (*domain.Student, error) {
	for _, student := range r.students {
		if student.StudentID == studentID {
			copied := *student
			return &copied, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *fakeRepository) ListStudents(context.Context, StudentFilter) ([]domain.Student, error) {
	out := make([]domain.Student, 0, len(r.students))
	for _, student := range r.students {
		out = append(out, *student)
	}
	return out, nil
}

func (r *fakeRepository) UpdateStudent(_ context.Context, student *domain.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return ErrStudentNotFound
	}
	copied := *student
	r.students[student.ID] = &copied
	return nil
}

func (r *fakeRepository) DeleteStudent(_ context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

func TestSettings_DefaultsWhenNeverSaved(t *testing.T) {
	svc := NewService(newFakeRepository())

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSchoolName, settings.SchoolName)
	assert.True(t, settings.SendEmail)
	assert.True(t, settings.SendSMS)
	assert.False(t, settings.AutoSend)
}

func TestSettings_EmptyNameFallsBackToDefault(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	require.NoError(t, svc.UpdateSettings(context.Background(), &domain.SchoolSettings{
		SchoolName: "",
		SendSMS:    true,
	}))

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSchoolName, settings.SchoolName)
	assert.False(t, settings.SendEmail)
	assert.True(t, settings.SendSMS)
}

func TestSchoolInfo_ReadsFreshSettings(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	ctx := context.Background()
	require.NoError(t, svc.UpdateSettings(ctx, &domain.SchoolSettings{SchoolName: "First Name"}))

	info, err := svc.SchoolInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "First Name", info.Name)

	require.NoError(t, svc.UpdateSettings(ctx, &domain.SchoolSettings{
		SchoolName:  "Second Name",
		SchoolPhone: "+251111234567",
	}))

	info, err = svc.SchoolInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second Name", info.Name)
	assert.Equal(t, "+251111234567", info.Phone)
}

func TestCreateStudent_TitleCasesNames(t *testing.T) {
	svc := NewService(newFakeRepository())

	student := &domain.Student{
		Name:       "  abebe bekele ",
		StudentID:  "S-001",
		Grade:      "Grade 4",
		ParentName: "bekele tadesse",
	}
	require.NoError(t, svc.CreateStudent(context.Background(), student))

	assert.Equal(t, "Abebe Bekele", student.Name)
	assert.Equal(t, "Bekele Tadesse", student.ParentName)
}

func TestCreateStudent_RejectsDuplicateStudentID(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	require.NoError(t, svc.CreateStudent(ctx, &domain.Student{Name: "A", StudentID: "S-001", Grade: "1"}))

	err := svc.CreateStudent(ctx, &domain.Student{Name: "B", StudentID: "S-001", Grade: "2"})
	assert.ErrorIs(t, err, ErrDuplicateStudentID)
}

func TestUpdateStudent_AllowsKeepingOwnStudentID(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	student := &domain.Student{Name: "A", StudentID: "S-001", Grade: "1"}
	require.NoError(t, svc.CreateStudent(ctx, student))

	student.Grade = "2"
	require.NoError(t, svc.UpdateStudent(ctx, student))
}

func TestUpdateStudent_RejectsStudentIDOfAnother(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	first := &domain.Student{Name: "A", StudentID: "S-001", Grade: "1"}
	require.NoError(t, svc.CreateStudent(ctx, first))
	second := &domain.Student{Name: "B", StudentID: "S-002", Grade: "1"}
	require.NoError(t, svc.CreateStudent(ctx, second))

	second.StudentID = "S-001"
	err := svc.UpdateStudent(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateStudentID)
}
