package mapping

import (
	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/models"
)

// ToModelBalanceAggregate converts a domain BalanceAggregate to a model BalanceAggregate
func ToModelBalanceAggregate(d domain.BalanceAggregate) models.BalanceAggregate {
	return models.BalanceAggregate{
		BalanceType:   string(d.Key.Type),
		FirstID:       d.Key.FirstID,
		SecondID:      d.Key.SecondID,
		Balance:       d.Balance,
		LastExpenseID: d.LastExpenseID,
		Version:       d.Version,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ToDomainBalanceAggregate converts a model BalanceAggregate to a domain BalanceAggregate
func ToDomainBalanceAggregate(m models.BalanceAggregate) domain.BalanceAggregate {
	return domain.BalanceAggregate{
		Key: domain.BalanceKey{
			Type:     domain.BalanceType(m.BalanceType),
			FirstID:  m.FirstID,
			SecondID: m.SecondID,
		},
		Balance:       m.Balance,
		LastExpenseID: m.LastExpenseID,
		Version:       m.Version,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

// ToDomainBalanceAggregateSlice converts a slice of model rows to domain aggregates
func ToDomainBalanceAggregateSlice(ms []models.BalanceAggregate) []domain.BalanceAggregate {
	ds := make([]domain.BalanceAggregate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBalanceAggregate(m)
	}
	return ds
}
