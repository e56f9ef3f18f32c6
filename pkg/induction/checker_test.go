package induction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/sitepass/pkg/adapters/memory"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/induction"
	"github.com/aretw0/sitepass/pkg/locking"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChecker(seed []ports.Row, opts ...induction.Option) *induction.Checker {
	store := memory.NewStoreWith(map[ports.Table][]ports.Row{ports.TableInductions: seed})
	return induction.NewChecker(locking.NewManager(store), opts...)
}

var seed = []ports.Row{
	{"Company": "Acme", "Name": "Alice", "Expiry Date (Auto)": "2024-06-01"},
	{"Company": "Acme", "Name": "Bob", "Expiry Date (Auto)": "2024-05-31 00:00:00"},
	{"Company": "Acme", "Name": "Dan", "Expiry Date (Auto)": "next spring"},
	{"Company": "Beta", "Name": "Carol", "Expiry Date (Auto)": "2030-01-01"},
}

func TestCheck_Classifications(t *testing.T) {
	c := newChecker(seed)

	results, err := c.Check(context.Background(), " acme ", []string{"ALICE", "Bob", "Carol", "Dan"}, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, domain.Inducted, results[0].Classification, "expiry on the visit day still counts")
	assert.Equal(t, domain.Expired, results[1].Classification)
	assert.Equal(t, domain.RequiresInduction, results[2].Classification, "Carol belongs to another company")
	assert.Equal(t, domain.Unparsable, results[3].Classification)

	assert.Equal(t, []string{
		"ALICE is inducted for the scheduled date.",
		"Bob's induction expires before the scheduled date and needs to be redone.",
		"Carol requires an induction.",
		"Could not parse expiry date for Dan.",
	}, induction.Messages(results))

	require.NotNil(t, results[0].Expiry)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *results[0].Expiry)
}

func TestCheck_EmptyEngineers(t *testing.T) {
	results, err := newChecker(seed).Check(context.Background(), "Acme", nil, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheck_MissingDate(t *testing.T) {
	c := newChecker(seed)

	_, err := c.Check(context.Background(), "Acme", []string{"Alice"}, "")
	assert.ErrorIs(t, err, domain.ErrMissingDate)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Missing maintenance date.", domain.MessageOf(err))

	_, err = c.Check(context.Background(), "Acme", []string{"Alice"}, "01/06/2024")
	assert.ErrorIs(t, err, domain.ErrMissingDate)
	assert.ErrorIs(t, err, domain.ErrDateParse)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "maintenance_date", de.Field)
}

func TestCheck_MissingCompany(t *testing.T) {
	_, err := newChecker(seed).Check(context.Background(), " ", []string{"Alice"}, "2024-06-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type failingStore struct{}

func (failingStore) ReadTable(context.Context, ports.Table) ([]ports.Row, error) {
	return nil, errors.New("unreachable")
}
func (failingStore) WriteTable(context.Context, ports.Table, []ports.Row) error { return nil }

func TestCheck_StoreUnavailable(t *testing.T) {
	c := induction.NewChecker(locking.NewManager(failingStore{}))
	_, err := c.Check(context.Background(), "Acme", []string{"Alice"}, "2024-06-01")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCheck_EmitsPerEngineer(t *testing.T) {
	var got []domain.Classification
	hooks := domain.LifecycleHooks{OnInductionCheck: func(_ context.Context, e *domain.InductionEvent) {
		got = append(got, e.Result.Classification)
	}}

	_, err := newChecker(seed, induction.WithHooks(hooks)).Check(context.Background(), "Acme", []string{"Alice", "Zed"}, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, []domain.Classification{domain.Inducted, domain.RequiresInduction}, got)
}
