package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visahub/backend/domain"
)

func TestBaseline_KnownTypesNonEmpty(t *testing.T) {
	cases := []struct {
		visa  domain.VisaType
		phase domain.Phase
	}{
		{domain.VisaF1, domain.PhaseF1},
		{domain.VisaCPT, domain.PhaseCPT},
		{domain.VisaOPT, domain.PhaseOPT},
		{domain.VisaSTEMOPT, domain.PhaseSTEMOPT},
		{domain.VisaJ1, domain.PhaseJ1},
		{domain.VisaH1B, domain.PhaseH1B},
	}

	for _, tc := range cases {
		items := Baseline(tc.visa, tc.phase)
		require.NotEmpty(t, items, "phase %s", tc.phase)
		for _, item := range items {
			assert.Equal(t, tc.phase, item.Phase)
			assert.NotEmpty(t, item.Title)
			assert.True(t, domain.ValidCategories[item.Category])
			assert.True(t, domain.ValidPriorities[item.Priority])
		}
	}
}

func TestBaseline_Deterministic(t *testing.T) {
	first := Baseline(domain.VisaF1, domain.PhaseF1)
	second := Baseline(domain.VisaF1, domain.PhaseF1)

	assert.Equal(t, first, second)
}

func TestBaseline_OrderStable(t *testing.T) {
	items := Baseline(domain.VisaF1, domain.PhaseF1)

	require.GreaterOrEqual(t, len(items), 2)
	assert.Equal(t, "Verify I-20 validity and program end date", items[0].Title)
	assert.Equal(t, "Confirm SEVIS fee payment receipt", items[1].Title)
}

func TestBaseline_UnknownVisaTypeFallback(t *testing.T) {
	items := Baseline(domain.VisaType("B2"), domain.PhaseF1)

	require.Len(t, items, 2)
	assert.Equal(t, "Keep passport copy on file", items[0].Title)
	assert.Equal(t, "Keep visa stamp copy on file", items[1].Title)
	assert.Equal(t, domain.PhaseGeneral, items[0].Phase)
}

func TestBaseline_ReturnsCopy(t *testing.T) {
	items := Baseline(domain.VisaF1, domain.PhaseF1)
	items[0].Title = "mutated"

	again := Baseline(domain.VisaF1, domain.PhaseF1)
	assert.NotEqual(t, "mutated", again[0].Title)
}
