package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/pledger/pkg/types"
)

type StatisticType string

const (
	// Daily counts and donated amounts
	StatisticTypeDailyDonationCount StatisticType = "daily_donation_count"
	StatisticTypeDailyDonationCents StatisticType = "daily_donation_cents"
	StatisticTypeTotalDonationCents StatisticType = "total_donation_cents"

	// Subscription lifecycle
	StatisticTypeDailyNewSubscriptionCount StatisticType = "daily_new_subscription_count"
	StatisticTypeActiveSubscriptionCount   StatisticType = "active_subscription_count"
)

// Filter fields supported by certain statistic types
type DonationStatisticFilterType string

const (
	DonationStatisticFilterTypeDonationType DonationStatisticFilterType = "type"
	DonationStatisticFilterTypeGatewayID    DonationStatisticFilterType = "gateway_id"
)

var filterTypes = []DonationStatisticFilterType{
	DonationStatisticFilterTypeDonationType,
	DonationStatisticFilterTypeGatewayID,
}

var validFilters = map[DonationStatisticFilterType][]StatisticType{
	DonationStatisticFilterTypeDonationType: {StatisticTypeDailyDonationCount, StatisticTypeDailyDonationCents},
	DonationStatisticFilterTypeGatewayID:    {StatisticTypeDailyDonationCount, StatisticTypeDailyDonationCents, StatisticTypeActiveSubscriptionCount},
}

type DonationStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type DonationStatisticRequest struct {
	Filters   []*types.CommonFilter        `json:"filters"`
	DataItems []*DonationStatisticDataItem `json:"data_items"`
}

func (f *DonationStatisticRequest) GetFilters(statisticType StatisticType) *DonationStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result DonationStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[DonationStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause from the provided filters.
func (f *DonationStatisticRequest) Build(builder clause.Builder) {
	if len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type DonationStatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type DonationStatisticResponse struct {
	DataItems map[StatisticType][]DonationStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyDonationCount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("donation").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status IN ?", []types.DonationStatus{types.DonationStatusComplete, types.DonationStatusRenewal}).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyDonationCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyDonationCents(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("donation").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount_cents) as value").
		Where("status IN ?", []types.DonationStatus{types.DonationStatusComplete, types.DonationStatusRenewal}).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyDonationCents)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalDonationCents(ctx context.Context, _ *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
SELECT currency as label, COALESCE(SUM(amount_cents), 0) as value
FROM donation
WHERE status IN ('complete', 'renewal')
GROUP BY currency
ORDER BY currency
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewSubscriptionCount(ctx context.Context, _ *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH distinct_dates AS (
    SELECT DISTINCT DATE(created_at) as date FROM subscription ORDER BY date
),
subscription_date AS (
    SELECT id, DATE(created_at) as date FROM subscription
)
SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COUNT(s.id) as value
FROM distinct_dates d
JOIN subscription_date s ON s.date = d.date
GROUP BY d.date
ORDER BY d.date DESC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, request *DonationStatisticRequest) ([]DonationStatisticResponseDataItem, error) {
	var results []DonationStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("subscription").
		Select("count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeActiveSubscriptionCount)}}).
		Where("status = ?", types.SubscriptionStatusActive)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDonationStatistic(ctx context.Context, request *DonationStatisticRequest, dataItem *DonationStatisticDataItem) ([]DonationStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyDonationCount:
		return s.getDailyDonationCount(ctx, request)
	case StatisticTypeDailyDonationCents:
		return s.getDailyDonationCents(ctx, request)
	case StatisticTypeTotalDonationCents:
		return s.getTotalDonationCents(ctx, request)
	case StatisticTypeDailyNewSubscriptionCount:
		return s.getDailyNewSubscriptionCount(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

func (s *Service) GetDonationStatistic(ctx context.Context, request *DonationStatisticRequest) (*DonationStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []DonationStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DonationStatisticDataItem) {
			defer wg.Done()
			// check filter applicability
			for _, filter := range request.Filters {
				ft := DonationStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []DonationStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getDonationStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []DonationStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]DonationStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &DonationStatisticResponse{DataItems: results}, nil
}
