package statistics

import (
	"testing"

	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestGetFilters_DropsInapplicableFilter(t *testing.T) {
	req := &DonationStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "type", Operator: types.CommonFilterOperatorEq, Values: []any{"renewal"}},
			{Field: "gateway_id", Operator: types.CommonFilterOperatorEq, Values: []any{"square"}},
		},
	}

	// type does not apply to active_subscription_count, gateway_id does
	filtered := req.GetFilters(StatisticTypeActiveSubscriptionCount)
	require.Len(t, filtered.Filters, 1)
	require.Equal(t, "gateway_id", filtered.Filters[0].Field)

	// both apply to daily_donation_count
	filtered = req.GetFilters(StatisticTypeDailyDonationCount)
	require.Len(t, filtered.Filters, 2)
}

func TestGetFilters_UnknownFieldPassesThrough(t *testing.T) {
	req := &DonationStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "form_id", Operator: types.CommonFilterOperatorEq, Values: []any{"f-1"}},
		},
	}
	filtered := req.GetFilters(StatisticTypeTotalDonationCents)
	require.Len(t, filtered.Filters, 1)
}

func TestGetFilters_NilAndEmpty(t *testing.T) {
	var req *DonationStatisticRequest
	require.Nil(t, req.GetFilters(StatisticTypeDailyDonationCount))

	empty := &DonationStatisticRequest{}
	require.Same(t, empty, empty.GetFilters(StatisticTypeDailyDonationCount))
}
