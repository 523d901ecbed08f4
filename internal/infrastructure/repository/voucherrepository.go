package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/infrastructure/persistence/mappers"
	"github.com/lnpos/voucherd/internal/infrastructure/persistence/models"
	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/db"
)

// VoucherRepository is the gorm-backed voucher store. Transitions are single
// conditional UPDATEs; a caller wins iff exactly one row was affected.
type VoucherRepository struct {
	db *gorm.DB
	tm *db.TransactionManager
}

func NewVoucherRepository(gdb *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: gdb, tm: db.NewTransactionManager(gdb)}
}

var _ voucher.Repository = (*VoucherRepository)(nil)

func (r *VoucherRepository) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tm.RunInTransaction(ctx, fn)
}

func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	if v.IssuerRefCiphertext() == "" {
		return voucher.ErrMissingCiphertext
	}

	model := mappers.VoucherToModel(v)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %s", voucher.ErrIDCollision, v.ID())
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	return nil
}

func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*voucher.Voucher, error) {
	var model models.VoucherModel

	err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	return mappers.VoucherToDomain(&model)
}

func (r *VoucherRepository) GetRedeemable(ctx context.Context, id string, now time.Time) (*voucher.Voucher, error) {
	var model models.VoucherModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(redeemableAt(now)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get redeemable voucher: %w", err)
	}

	return mappers.VoucherToDomain(&model)
}

func (r *VoucherRepository) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	now = mappers.DBTime(now)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Scopes(redeemableAt(now)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_at": now,
			"status":     vo.StatusClaimed.String(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim voucher: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *VoucherRepository) Unclaim(ctx context.Context, id string, now time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, vo.StatusClaimed.String(), mappers.DBTime(now)).
		Updates(map[string]interface{}{
			"claimed":    false,
			"claimed_at": nil,
			"status":     vo.StatusActive.String(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to unclaim voucher: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *VoucherRepository) Cancel(ctx context.Context, id string, now time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Scopes(activeAt(now)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       vo.StatusCancelled.String(),
			"cancelled_at": mappers.DBTime(now),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to cancel voucher: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *VoucherRepository) CountActiveByWallet(ctx context.Context, walletID string, now time.Time) (int, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Scopes(activeAt(now)).
		Where("wallet_id = ?", walletID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count vouchers for wallet: %w", err)
	}

	return int(count), nil
}

func (r *VoucherRepository) List(ctx context.Context) ([]*voucher.Voucher, error) {
	var rows []models.VoucherModel

	err := db.GetTxFromContext(ctx, r.db).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}

	return mappers.VouchersToDomain(rows)
}

type statsRow struct {
	Total     int64
	Active    int64
	Claimed   int64
	Cancelled int64
	Expired   int64
}

// Stats buckets every row by its derived status at now, independent of the
// cached status column.
func (r *VoucherRepository) Stats(ctx context.Context, now time.Time) (voucher.Stats, error) {
	now = mappers.DBTime(now)

	var row statsRow
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VoucherModel{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN claimed = ? THEN 1 ELSE 0 END), 0) AS claimed,
			COALESCE(SUM(CASE WHEN claimed = ? AND cancelled_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN claimed = ? AND cancelled_at IS NULL AND expires_at < ? THEN 1 ELSE 0 END), 0) AS expired,
			COALESCE(SUM(CASE WHEN claimed = ? AND cancelled_at IS NULL AND expires_at >= ? THEN 1 ELSE 0 END), 0) AS active`,
			true, false, false, now, false, now).
		Scan(&row).Error
	if err != nil {
		return voucher.Stats{}, fmt.Errorf("failed to compute voucher stats: %w", err)
	}

	return voucher.Stats{
		Total:     row.Total,
		Active:    row.Active,
		Claimed:   row.Claimed,
		Cancelled: row.Cancelled,
		Expired:   row.Expired,
	}, nil
}

// activeAt restricts a query to vouchers whose derived status at now is
// ACTIVE. It reads the same columns as Stats and ignores the cached status,
// so results do not depend on whether a sweep has run.
func activeAt(now time.Time) func(*gorm.DB) *gorm.DB {
	now = mappers.DBTime(now)
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("claimed = ? AND cancelled_at IS NULL AND expires_at >= ?", false, now)
	}
}

// redeemableAt restricts a query to vouchers a claim could take at now.
func redeemableAt(now time.Time) func(*gorm.DB) *gorm.DB {
	now = mappers.DBTime(now)
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ? AND claimed = ? AND expires_at > ?", vo.StatusActive.String(), false, now)
	}
}
