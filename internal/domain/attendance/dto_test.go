package attendance

import (
	"testing"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.ToMap()
}

func TestCheckInRequestValidate(t *testing.T) {
	assert.NoError(t, (&CheckInRequest{}).Validate())
	assert.NoError(t, (&CheckInRequest{Latitude: ptr(-6.2), Longitude: ptr(106.8), LocationAccuracy: ptr(12.5)}).Validate())

	fields := fieldsOf(t, (&CheckInRequest{Latitude: ptr(-6.2)}).Validate())
	assert.Contains(t, fields, "latitude")

	fields = fieldsOf(t, (&CheckInRequest{Latitude: ptr(95.0), Longitude: ptr(200.0), LocationAccuracy: ptr(-1.0)}).Validate())
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")
	assert.Contains(t, fields, "location_accuracy")
}

func TestUpdateAttendanceRequestValidate(t *testing.T) {
	t.Run("parses timestamps", func(t *testing.T) {
		req := UpdateAttendanceRequest{
			ID:       "att-1",
			CheckIn:  ptr("2024-01-01T09:00:00+07:00"),
			CheckOut: ptr("2024-01-01T18:00:00+07:00"),
		}
		require.NoError(t, req.Validate())
		require.NotNil(t, req.CheckInTime)
		require.NotNil(t, req.CheckOutTime)
		assert.Equal(t, 9.0, req.CheckOutTime.Sub(*req.CheckInTime).Hours())
	})

	t.Run("rejects check-out before check-in", func(t *testing.T) {
		req := UpdateAttendanceRequest{
			ID:       "att-1",
			CheckIn:  ptr("2024-01-01T18:00:00Z"),
			CheckOut: ptr("2024-01-01T09:00:00Z"),
		}
		assert.Contains(t, fieldsOf(t, req.Validate()), "check_out")
	})

	t.Run("requires at least one field", func(t *testing.T) {
		req := UpdateAttendanceRequest{ID: "att-1"}
		assert.Contains(t, fieldsOf(t, req.Validate()), "body")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		req := UpdateAttendanceRequest{ID: "att-1", Status: ptr("sleeping")}
		assert.Contains(t, fieldsOf(t, req.Validate()), "status")
	})
}

func TestAttendanceFilterDefaults(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "check_in", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)
}

func TestAttendanceFilterRejectsInvertedRange(t *testing.T) {
	f := AttendanceFilter{StartDate: ptr("2024-02-10"), EndDate: ptr("2024-02-01"), Limit: 500}
	fields := fieldsOf(t, f.Validate())
	assert.Contains(t, fields, "end_date")
	assert.Contains(t, fields, "limit")
}

func TestMyAttendanceFilterRejectsEmployeeSort(t *testing.T) {
	f := MyAttendanceFilter{SortBy: "employee_name"}
	assert.Contains(t, fieldsOf(t, f.Validate()), "sort_by")
}
