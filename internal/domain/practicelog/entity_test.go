package practicelog

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

func TestPayloadValidate(t *testing.T) {
	v := 12.5
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name     string
		tracking practice.TrackingType
		payload  Payload
		wantErr  error
	}{
		{"boolean no value", practice.TrackingBoolean, Payload{Completed: true}, nil},
		{"text no value", practice.TrackingText, Payload{Completed: true}, nil},
		{"numeric with value", practice.TrackingNumeric, Payload{Completed: true, Value: &v}, nil},
		{"numeric missing value", practice.TrackingNumeric, Payload{Completed: true}, shared.ErrMissingNumericValue},
		{"numeric NaN", practice.TrackingNumeric, Payload{Completed: true, Value: &nan}, shared.ErrMissingNumericValue},
		{"numeric Inf", practice.TrackingNumeric, Payload{Completed: true, Value: &inf}, shared.ErrMissingNumericValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate(tt.tracking)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	v := 3.0
	notes := "morning session"
	loc := time.FixedZone("UTC+9", 9*3600)

	e := New("c-1", time.Date(2025, time.July, 1, 8, 30, 0, 0, loc), Payload{
		Completed: true,
		Value:     &v,
		Notes:     &notes,
	})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "c-1", e.CommitmentID)
	assert.Equal(t, dateutil.Date(2025, time.July, 1), e.Date)
	assert.True(t, e.Completed)
	require.NotNil(t, e.Value)
	assert.Equal(t, 3.0, *e.Value)
	assert.Equal(t, "morning session", e.Notes)
	assert.True(t, e.HasNotes())
}

func TestApply_PartialFields(t *testing.T) {
	v := 5.0
	notes := "first attempt"
	e := New("c-1", dateutil.Date(2025, time.July, 1), Payload{Completed: true, Value: &v, Notes: &notes})

	// Completed is always overwritten; nil value and notes keep the old fields.
	e.Apply(Payload{Completed: false})
	assert.False(t, e.Completed)
	require.NotNil(t, e.Value)
	assert.Equal(t, 5.0, *e.Value)
	assert.Equal(t, "first attempt", e.Notes)

	// Present fields overwrite, including an explicit empty note.
	v2 := 8.0
	empty := ""
	e.Apply(Payload{Completed: true, Value: &v2, Notes: &empty})
	assert.True(t, e.Completed)
	assert.Equal(t, 8.0, *e.Value)
	assert.Equal(t, "", e.Notes)
	assert.False(t, e.HasNotes())
}

func TestApply_CopiesValue(t *testing.T) {
	v := 1.0
	e := New("c-1", dateutil.Date(2025, time.July, 1), Payload{Completed: true, Value: &v})

	v = 99.0
	assert.Equal(t, 1.0, *e.Value)
}
