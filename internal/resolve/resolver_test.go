package resolve

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// fakeRegistry records search terms and replays canned results per term.
type fakeRegistry struct {
	results map[string][]model.Institution
	errs    map[string]error
	calls   []string
}

func (f *fakeRegistry) SearchInstitutions(_ context.Context, term string) ([]model.Institution, error) {
	f.calls = append(f.calls, term)
	if err := f.errs[term]; err != nil {
		return nil, err
	}
	return f.results[term], nil
}

func TestCoreTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"strips suffixes", "Synchrony Financial Corp", []string{"SYNCHRONY"}},
		{"strips conjunctions", "The Goldman Sachs Group Inc", []string{"GOLDMAN", "SACHS"}},
		{"all stop words falls back to first", "The Corp", []string{"THE"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoreTokens(tt.in))
		})
	}
}

func TestSearchTermsOrderAndDedup(t *testing.T) {
	got := SearchTerms("Synchrony Financial")
	assert.Equal(t, []string{
		"SYNCHRONY",
		"SYNCHRONY BANK",
		"SYNCHRONY NATIONAL BANK",
		"SYNCHRONY FINANCIAL",
	}, got)

	// Single-token names collapse duplicate variants.
	got = SearchTerms("Synchrony")
	assert.Equal(t, []string{
		"SYNCHRONY",
		"SYNCHRONY BANK",
		"SYNCHRONY NATIONAL BANK",
	}, got)
}

func TestResolveStaticTableShortCircuits(t *testing.T) {
	reg := &fakeRegistry{}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "wells fargo & company")
	require.NoError(t, err)
	assert.Equal(t, "3511", inst.Cert)
	assert.True(t, inst.Active)

	// The dynamic search path must never be invoked on a static hit.
	assert.Empty(t, reg.calls)
}

func TestResolveSearchSelectsLargestActive(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]model.Institution{
			"ZENITH": {
				{Cert: "100", Name: "Zenith Trust", Asset: 900, Active: false},
				{Cert: "101", Name: "Zenith Bank", Asset: 500, Active: true},
				{Cert: "102", Name: "Zenith National Bank", Asset: 750, Active: true},
			},
		},
	}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "Zenith Holdings")
	require.NoError(t, err)
	assert.Equal(t, "102", inst.Cert)
}

func TestResolveTieBreakKeepsFirstEncountered(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]model.Institution{
			"ZENITH": {
				{Cert: "201", Name: "Zenith Bank A", Asset: 500, Active: true},
				{Cert: "202", Name: "Zenith Bank B", Asset: 500, Active: true},
			},
		},
	}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "Zenith")
	require.NoError(t, err)
	assert.Equal(t, "201", inst.Cert)
}

func TestResolveFallsThroughVariantsInOrder(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]model.Institution{
			"ZENITH NATIONAL BANK": {
				{Cert: "300", Name: "Zenith National Bank", Asset: 100, Active: true},
			},
		},
	}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "Zenith Holdings")
	require.NoError(t, err)
	assert.Equal(t, "300", inst.Cert)
	assert.Equal(t, []string{"ZENITH", "ZENITH BANK", "ZENITH NATIONAL BANK"}, reg.calls)
}

func TestResolveUpstreamErrorTriesNextVariant(t *testing.T) {
	reg := &fakeRegistry{
		errs: map[string]error{
			"ZENITH": eris.New("upstream timeout"),
		},
		results: map[string][]model.Institution{
			"ZENITH BANK": {
				{Cert: "400", Name: "Zenith Bank", Asset: 100, Active: true},
			},
		},
	}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "Zenith")
	require.NoError(t, err)
	assert.Equal(t, "400", inst.Cert)
}

func TestResolveNotFoundAfterExhaustion(t *testing.T) {
	reg := &fakeRegistry{}
	r := New(reg)

	_, err := r.Resolve(context.Background(), "Nonexistent Savings")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NotEmpty(t, reg.calls)
}

func TestResolveInactiveOnlyMatchTriesNextVariant(t *testing.T) {
	// A variant that matches only inactive institutions does not settle the
	// name; a later variant can still hit an active one.
	reg := &fakeRegistry{
		results: map[string][]model.Institution{
			"ZENITH": {
				{Cert: "500", Name: "Zenith Bank (closed)", Asset: 100, Active: false},
			},
			"ZENITH BANK": {
				{Cert: "501", Name: "Zenith Bank", Asset: 200, Active: true},
			},
		},
	}
	r := New(reg)

	inst, err := r.Resolve(context.Background(), "Zenith")
	require.NoError(t, err)
	assert.Equal(t, "501", inst.Cert)
	assert.Equal(t, []string{"ZENITH", "ZENITH BANK"}, reg.calls)
}

func TestResolveInactiveOnlyEverywhereIsNotFound(t *testing.T) {
	reg := &fakeRegistry{
		results: map[string][]model.Institution{
			"ZENITH": {
				{Cert: "500", Name: "Zenith Bank (closed)", Asset: 100, Active: false},
			},
		},
	}
	r := New(reg)

	_, err := r.Resolve(context.Background(), "Zenith")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}
