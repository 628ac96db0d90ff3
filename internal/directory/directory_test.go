package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dispatch-service/internal/directory"
	"github.com/spec-kit/dispatch-service/internal/domain"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

func testDirectory() directory.Directory {
	return directory.NewMemoryDirectory([]domain.Engineer{
		{ID: 1, Name: "Andika Prasetya", Unit: "Database Admin Specialist", Email: "andika.prasetya@example.com", Attendance: "bekerja", YearsOfService: 5},
		{ID: 2, Name: "Rina Oktaviani", Unit: "Database Admin Specialist", Email: "rina.oktaviani@example.com", Attendance: "cuti", YearsOfService: 2},
		{ID: 3, Name: "Wahyu Hidayat", Unit: "Helpdesk Officer", Email: "wahyu.hidayat@example.com", Attendance: "bekerja", YearsOfService: 8},
	})
}

func TestListFiltering(t *testing.T) {
	dir := testDirectory()

	byUnit := dir.List(directory.Filter{Unit: "database"})
	assert.Len(t, byUnit, 2)

	byAttendance := dir.List(directory.Filter{Attendance: "cuti"})
	require.Len(t, byAttendance, 1)
	assert.Equal(t, "Rina Oktaviani", byAttendance[0].Name)

	min := 3
	max := 6
	byYears := dir.List(directory.Filter{MinYears: &min, MaxYears: &max})
	require.Len(t, byYears, 1)
	assert.Equal(t, "Andika Prasetya", byYears[0].Name)

	all := dir.List(directory.Filter{})
	assert.Len(t, all, 3)
}

func TestGetByID(t *testing.T) {
	dir := testDirectory()

	engineer, err := dir.GetByID(3)
	require.NoError(t, err)
	assert.Equal(t, "Wahyu Hidayat", engineer.Name)

	_, err = dir.GetByID(99)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestGetByNameSubstring(t *testing.T) {
	dir := testDirectory()

	engineer, err := dir.GetByName("oktaviani")
	require.NoError(t, err)
	assert.Equal(t, 2, engineer.ID)

	_, err = dir.GetByName("nobody")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestResolveAcceptsIDOrName(t *testing.T) {
	dir := testDirectory()

	byID, ok := dir.Resolve("1")
	require.True(t, ok)
	assert.Equal(t, "Andika Prasetya", byID.Name)

	byName, ok := dir.Resolve("wahyu hidayat")
	require.True(t, ok)
	assert.Equal(t, 3, byName.ID)

	_, ok = dir.Resolve("")
	assert.False(t, ok)

	_, ok = dir.Resolve("99")
	assert.False(t, ok)
}

func TestGroupByUnit(t *testing.T) {
	dir := testDirectory()

	groups := dir.GroupByUnit()
	assert.Equal(t, 2, groups["Database Admin Specialist"])
	assert.Equal(t, 1, groups["Helpdesk Officer"])
}

func TestDeriveEmail(t *testing.T) {
	assert.Equal(t, "andika.prasetya@corp.example", directory.DeriveEmail("Andika Prasetya", "corp.example"))
	assert.Equal(t, "wahyu.hidayat@corp.example", directory.DeriveEmail("  Wahyu   Hidayat ", "corp.example"))
	assert.Equal(t, "engineer@corp.example", directory.DeriveEmail("123", "corp.example"))
}

func TestSeededDirectory(t *testing.T) {
	dir := directory.NewSeededDirectory("corp.example")
	assert.Greater(t, dir.Size(), 0)

	engineer, err := dir.GetByID(1)
	require.NoError(t, err)
	assert.Contains(t, engineer.Email, "@corp.example")
	assert.Contains(t, []string{"bekerja", "cuti"}, engineer.Attendance)
	assert.GreaterOrEqual(t, engineer.YearsOfService, 1)
}
