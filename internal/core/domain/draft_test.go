package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftWithTargets(t *testing.T, targets map[domain.Category]int) domain.EventDraft {
	t.Helper()
	d := domain.NewEventDraft()
	var err error
	for _, c := range domain.Categories {
		d, err = d.SetTarget(c, targets[c])
		require.NoError(t, err)
	}
	return d
}

func TestRemainingCount_AssignAndToggle(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryOro: 6})
	var err error

	// N = 4 assignments
	cells := [][2]int{{0, 0}, {0, 1}, {2, 2}, {4, 4}}
	for _, c := range cells {
		d, err = d.AssignCategory(c[0], c[1], domain.CategoryOro)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, d.Remaining(domain.CategoryOro))

	// M = 2 toggles, one through re-assigning the same category
	d, err = d.ToggleOff(0, 0)
	require.NoError(t, err)
	d, err = d.AssignCategory(2, 2, domain.CategoryOro)
	require.NoError(t, err)

	assert.Equal(t, 6-4+2, d.Remaining(domain.CategoryOro))
	assert.Equal(t, 2, d.Grid.CountByCategory()[domain.CategoryOro])
}

func TestAssignCategory_Exhausted(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryPlatino: 1})
	d, err := d.AssignCategory(0, 0, domain.CategoryPlatino)
	require.NoError(t, err)

	_, err = d.AssignCategory(0, 1, domain.CategoryPlatino)

	assert.ErrorIs(t, err, domain.ErrCategoryExhausted)
	assert.Zero(t, d.Remaining(domain.CategoryPlatino))
}

func TestAssignCategory_ZeroTarget(t *testing.T) {
	d := domain.NewEventDraft()

	_, err := d.AssignCategory(0, 0, domain.CategoryBronce)

	assert.ErrorIs(t, err, domain.ErrCategoryExhausted)
}

func TestAssignCategory_SwitchReturnsUnit(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryOro: 1, domain.CategoryPlata: 1})
	d, err := d.AssignCategory(1, 1, domain.CategoryOro)
	require.NoError(t, err)

	d, err = d.AssignCategory(1, 1, domain.CategoryPlata)

	require.NoError(t, err)
	assert.Equal(t, 1, d.Remaining(domain.CategoryOro))
	assert.Equal(t, 0, d.Remaining(domain.CategoryPlata))
	seat, _ := d.Grid.At(1, 1)
	assert.Equal(t, domain.CategoryPlata, seat.Category)
}

func TestToggleOff_UnassignedIsNoop(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryOro: 3})

	next, err := d.ToggleOff(3, 3)

	require.NoError(t, err)
	assert.Equal(t, d, next)
	assert.Equal(t, 3, next.Remaining(domain.CategoryOro))
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryOro: 3})
	before := d.Clone()

	_, err := d.AssignCategory(0, 0, domain.CategoryOro)
	require.NoError(t, err)
	_, err = d.SetTarget(domain.CategoryOro, 5)
	require.NoError(t, err)

	assert.Equal(t, before, d)
}

func TestSetTarget_CapacityExceeded(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{
		domain.CategoryPlatino: 10,
		domain.CategoryOro:     10,
	})

	_, err := d.SetTarget(domain.CategoryPlata, 6)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	d, err = d.SetTarget(domain.CategoryPlata, 5)
	require.NoError(t, err)

	// lowering an existing target frees capacity for another
	d, err = d.SetTarget(domain.CategoryPlatino, 4)
	require.NoError(t, err)
	_, err = d.SetTarget(domain.CategoryBronce, 6)
	assert.NoError(t, err)
}

func TestSetTarget_BelowAssigned(t *testing.T) {
	d := draftWithTargets(t, map[domain.Category]int{domain.CategoryOro: 2})
	d, err := d.AssignCategory(0, 0, domain.CategoryOro)
	require.NoError(t, err)
	d, err = d.AssignCategory(0, 1, domain.CategoryOro)
	require.NoError(t, err)

	_, err = d.SetTarget(domain.CategoryOro, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	d, err = d.SetTarget(domain.CategoryOro, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Remaining(domain.CategoryOro))
}

func completeDraft(t *testing.T) domain.EventDraft {
	t.Helper()
	d := draftWithTargets(t, map[domain.Category]int{
		domain.CategoryPlatino: 5,
		domain.CategoryOro:     5,
		domain.CategoryPlata:   5,
		domain.CategoryBronce:  10,
	})
	var err error
	for i, c := range domain.Categories {
		d, err = d.SetPrice(c, decimal.NewFromInt(int64(100-i*20)))
		require.NoError(t, err)
	}
	rows := []domain.Category{domain.CategoryPlatino, domain.CategoryOro, domain.CategoryPlata, domain.CategoryBronce, domain.CategoryBronce}
	for r, c := range rows {
		for col := 0; col < domain.GridCols; col++ {
			d, err = d.AssignCategory(r, col, c)
			require.NoError(t, err)
		}
	}
	return d
}

func TestValidate_PublishPreconditions(t *testing.T) {
	d := completeDraft(t)
	require.NoError(t, d.Validate())
	assert.True(t, d.Grid.IsFullyAssigned())

	unassigned, err := d.ToggleOff(4, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, unassigned.Validate(), domain.ErrPublishPrecondition)

	unpriced, err := d.SetPrice(domain.CategoryOro, decimal.Zero)
	require.NoError(t, err)
	assert.ErrorIs(t, unpriced.Validate(), domain.ErrPublishPrecondition)
}

func TestPublish(t *testing.T) {
	d := completeDraft(t)
	id := uuid.New()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	published, ev, err := d.Publish(id, "org-1", domain.EventDetails{Name: "Gala"}, now)

	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.False(t, d.Published)
	assert.Equal(t, id, ev.ID)
	assert.True(t, ev.EventAvailable)
	assert.Equal(t, domain.MaxTotalSeats, ev.Seats.AvailableCount())
	assert.True(t, ev.Prices[domain.CategoryPlatino].Equal(decimal.NewFromInt(100)))

	_, err = published.AssignCategory(0, 0, domain.CategoryOro)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = published.ToggleOff(0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = published.SetTarget(domain.CategoryOro, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, _, err = published.Publish(uuid.New(), "org-1", domain.EventDetails{}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPublish_RequiresOrganizer(t *testing.T) {
	_, _, err := completeDraft(t).Publish(uuid.New(), "", domain.EventDetails{}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
