package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
)

// AddOptIn records a subscription interest. Commodity and region are
// normalized to uppercase so fan-out matching is case-insensitive.
func (s *SQLStore) AddOptIn(ctx context.Context, userID int64, commodity, region string) (*model.OptIn, error) {
	var optIn model.OptIn
	err := s.db.GetContext(ctx, &optIn,
		`INSERT INTO opt_ins (user_id, commodity, region, active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING id, user_id, commodity, region, active, created_at`,
		userID, strings.ToUpper(commodity), strings.ToUpper(region))
	if err != nil {
		return nil, errors.Wrap(err, "store.AddOptIn")
	}
	return &optIn, nil
}
