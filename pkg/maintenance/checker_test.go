package maintenance_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sitepass/pkg/adapters/memory"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/locking"
	"github.com/aretw0/sitepass/pkg/maintenance"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seed = []ports.Row{
	{
		"Maintenance subject": "Boiler", "Company": "Acme",
		"Inspection date Q1": "March", "Inspection date Q2": "June",
		"Inspection date Q3": "September", "Inspection date Q4": "December",
	},
	{"Maintenance subject": "Lift", "Company": "Acme"},
	{"Maintenance subject": "Boiler", "Company": "Acme", "Inspection date Q1": "July"},
}

func newChecker(opts ...maintenance.Option) *maintenance.Checker {
	store := memory.NewStoreWith(map[ports.Table][]ports.Row{ports.TableMaintenance: seed})
	return maintenance.NewChecker(locking.NewManager(store), opts...)
}

func TestCheckWindow_Within(t *testing.T) {
	res, err := newChecker().CheckWindow(context.Background(), " boiler ", "ACME", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, res.WithinWindow)
	assert.Equal(t, "Yes", res.Status())
	assert.Equal(t, []string{"March", "June", "September", "December"}, res.ScheduledMonths)
}

func TestCheckWindow_OutsideUsesFirstSlotAndFirstRecord(t *testing.T) {
	res, err := newChecker().CheckWindow(context.Background(), "Boiler", "Acme", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, res.WithinWindow, "the duplicate July record is never consulted")
	assert.Equal(t, "March", res.NextDueMonth)
	assert.Equal(t, "No - Due in March", res.Status())
}

func TestCheckWindow_NoMonths(t *testing.T) {
	res, err := newChecker().CheckWindow(context.Background(), "Lift", "Acme", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownMonth, res.NextDueMonth)
	assert.Equal(t, "No - Due in Unknown", res.Status())
}

func TestCheckWindow_NotFound(t *testing.T) {
	var found []bool
	hooks := domain.LifecycleHooks{OnWindowCheck: func(_ context.Context, e *domain.WindowEvent) {
		found = append(found, e.Found)
	}}

	_, err := newChecker(maintenance.WithHooks(hooks)).CheckWindow(context.Background(), "Chiller", "Acme ", time.Now())
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.Equal(t, "No maintenance record found for 'chiller' under 'acme'.", domain.MessageOf(err))
	assert.Equal(t, []bool{false}, found)
}

func TestCheck_ParsesRequestedDate(t *testing.T) {
	res, err := newChecker().Check(context.Background(), "Boiler", "Acme", "15/06/24")
	require.NoError(t, err)
	assert.True(t, res.WithinWindow)
	assert.Equal(t, "The requested date 2024-06-15 is within the maintenance window.", res.Message())

	_, err = newChecker().Check(context.Background(), "Boiler", "Acme", "2024-06-15")
	assert.ErrorIs(t, err, domain.ErrDateParse)
}

func TestCheckWindow_MissingFields(t *testing.T) {
	_, err := newChecker().CheckWindow(context.Background(), "", "Acme", time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = newChecker().CheckWindow(context.Background(), "Boiler", "", time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
