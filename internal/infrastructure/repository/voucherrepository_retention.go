package repository

import (
	"context"
	"fmt"
	"time"

	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/infrastructure/persistence/mappers"
	"github.com/lnpos/voucherd/internal/infrastructure/persistence/models"
	"github.com/lnpos/voucherd/internal/shared/db"
)

// retentionColumns names the timestamp each terminal state ages from.
var retentionColumns = map[vo.Status]string{
	vo.StatusClaimed:   "claimed_at",
	vo.StatusCancelled: "cancelled_at",
	vo.StatusExpired:   "expires_at",
}

func (r *VoucherRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Where("status = ? AND claimed = ? AND expires_at <= ?", vo.StatusActive.String(), false, mappers.DBTime(now)).
		Update("status", vo.StatusExpired.String())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire vouchers: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *VoucherRepository) PurgeBatch(ctx context.Context, status vo.Status, cutoff time.Time, limit int) (int64, error) {
	column, ok := retentionColumns[status]
	if !ok {
		return 0, fmt.Errorf("status %s is not purgeable", status)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("purge batch size must be positive, got %d", limit)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	table := models.VoucherModel{}.TableName()
	cutoff = mappers.DBTime(cutoff)

	var sql string
	switch tx.Dialector.Name() {
	case "mysql":
		// MySQL rejects LIMIT inside an IN subquery but accepts it on DELETE.
		sql = fmt.Sprintf("DELETE FROM %s WHERE status = ? AND %s IS NOT NULL AND %s < ? ORDER BY %s LIMIT ?",
			table, column, column, column)
	default:
		sql = fmt.Sprintf("DELETE FROM %s WHERE id IN (SELECT id FROM %s WHERE status = ? AND %s IS NOT NULL AND %s < ? ORDER BY %s LIMIT ?)",
			table, table, column, column, column)
	}

	result := tx.Exec(sql, status.String(), cutoff, limit)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge %s vouchers: %w", status, result.Error)
	}

	return result.RowsAffected, nil
}

