package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

type commandFixture struct {
	templates   *fakeTemplateRepo
	commitments *fakeCommitmentRepo
	logs        *fakeLogRepo
	bus         *fakeEventBus
}

func newFixture() *commandFixture {
	return &commandFixture{
		templates:   newFakeTemplateRepo(),
		commitments: newFakeCommitmentRepo(),
		logs:        newFakeLogRepo(),
		bus:         newFakeEventBus(),
	}
}

func (f *commandFixture) seedTemplate(t *testing.T, tracking practice.TrackingType, creatorID string) *practice.Template {
	t.Helper()
	tpl, err := practice.New("Morning run", "", "fitness", tracking, creatorID)
	require.NoError(t, err)
	require.NoError(t, f.templates.Create(context.Background(), tpl))
	return tpl
}

func TestJoinPractice(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "")
	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)

	start := dateutil.Date(2025, time.August, 1)
	res, err := h.Handle(context.Background(), JoinPracticeCommand{
		UserID:     "user-1",
		TemplateID: tpl.ID,
		StartDate:  start,
	})
	require.NoError(t, err)

	assert.Equal(t, commitment.StatusActive, res.Commitment.Status)
	assert.Equal(t, start, res.Commitment.StartDate)
	assert.Len(t, f.bus.published(shared.EventCommitmentJoined), 1)
}

func TestJoinPractice_DefaultsStartToToday(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "")
	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)

	res, err := h.Handle(context.Background(), JoinPracticeCommand{
		UserID:     "user-1",
		TemplateID: tpl.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, dateutil.Today(time.UTC), res.Commitment.StartDate)
}

func TestJoinPractice_DuplicateActiveConflicts(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "")
	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)

	cmd := JoinPracticeCommand{UserID: "user-1", TemplateID: tpl.ID}
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrCommitmentExists)
}

func TestJoinPractice_RejoinAfterLeaveCreatesFreshCommitment(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "")
	join := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)
	leave := NewLeavePracticeHandler(f.commitments, f.logs, f.bus)

	first, err := join.Handle(context.Background(), JoinPracticeCommand{UserID: "user-1", TemplateID: tpl.ID})
	require.NoError(t, err)

	_, err = leave.Handle(context.Background(), LeavePracticeCommand{
		UserID:       "user-1",
		CommitmentID: first.Commitment.ID,
	})
	require.NoError(t, err)

	second, err := join.Handle(context.Background(), JoinPracticeCommand{UserID: "user-1", TemplateID: tpl.ID})
	require.NoError(t, err)

	// The old commitment stays archived with its logs; the new one is a
	// separate row with a fresh identity.
	assert.NotEqual(t, first.Commitment.ID, second.Commitment.ID)

	old, err := f.commitments.GetByID(context.Background(), first.Commitment.ID)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusArchived, old.Status)
}

func TestJoinPractice_DisabledTemplateRejected(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "")
	tpl.Disable()
	require.NoError(t, f.templates.Update(context.Background(), tpl))

	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)
	_, err := h.Handle(context.Background(), JoinPracticeCommand{UserID: "user-1", TemplateID: tpl.ID})
	assert.ErrorIs(t, err, shared.ErrPracticeDisabled)
}

func TestJoinPractice_CustomPracticeOwnerOnly(t *testing.T) {
	f := newFixture()
	tpl := f.seedTemplate(t, practice.TrackingBoolean, "owner-1")
	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)

	_, err := h.Handle(context.Background(), JoinPracticeCommand{UserID: "someone-else", TemplateID: tpl.ID})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = h.Handle(context.Background(), JoinPracticeCommand{UserID: "owner-1", TemplateID: tpl.ID})
	assert.NoError(t, err)
}

func TestJoinPractice_UnknownTemplate(t *testing.T) {
	f := newFixture()
	h := NewJoinPracticeHandler(f.templates, f.commitments, f.bus)

	_, err := h.Handle(context.Background(), JoinPracticeCommand{UserID: "user-1", TemplateID: "missing"})
	assert.ErrorIs(t, err, shared.ErrPracticeNotFound)
}
