// Package voucher assembles the voucher use cases into the store used by
// the HTTP surface and the CLI.
package voucher

import (
	"context"

	"github.com/lnpos/voucherd/internal/application/voucher/services"
	"github.com/lnpos/voucherd/internal/application/voucher/usecases"
	"github.com/lnpos/voucherd/internal/domain/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

type StoreConfig struct {
	MaxUnclaimedPerWallet int
	DefaultExpiryID       string
	Environment           string
}

// Store is the voucher lifecycle store. It holds no locks; the database is
// the only point of synchronisation between callers and between instances.
type Store struct {
	sweeper *services.RetentionSweeper

	createUC         *usecases.CreateVoucherUseCase
	getUC            *usecases.GetVoucherUseCase
	getWithStatusUC  *usecases.GetVoucherWithStatusUseCase
	claimUC          *usecases.ClaimVoucherUseCase
	unclaimUC        *usecases.UnclaimVoucherUseCase
	cancelUC         *usecases.CancelVoucherUseCase
	countUnclaimedUC *usecases.CountUnclaimedUseCase
	listUC           *usecases.ListVouchersUseCase
	statsUC          *usecases.GetStatsUseCase
	revealUC         *usecases.RevealIssuerRefUseCase
}

// NewStore wires the use cases. sweeper may be nil, in which case read
// paths never trigger retention work.
func NewStore(
	repo voucher.Repository,
	cipher voucher.CredentialCipher,
	sweeper *services.RetentionSweeper,
	clock biztime.Clock,
	cfg StoreConfig,
	log logger.Interface,
) *Store {
	if clock == nil {
		clock = biztime.SystemClock()
	}

	var hook usecases.Sweeper
	if sweeper != nil {
		hook = sweeper
	}

	return &Store{
		sweeper: sweeper,
		createUC: usecases.NewCreateVoucherUseCase(repo, cipher, clock, usecases.CreateVoucherConfig{
			MaxUnclaimedPerWallet: cfg.MaxUnclaimedPerWallet,
			DefaultExpiryID:       cfg.DefaultExpiryID,
			Environment:           cfg.Environment,
		}, log),
		getUC:            usecases.NewGetVoucherUseCase(repo, hook, clock, log),
		getWithStatusUC:  usecases.NewGetVoucherWithStatusUseCase(repo, clock, log),
		claimUC:          usecases.NewClaimVoucherUseCase(repo, clock, log),
		unclaimUC:        usecases.NewUnclaimVoucherUseCase(repo, clock, log),
		cancelUC:         usecases.NewCancelVoucherUseCase(repo, clock, log),
		countUnclaimedUC: usecases.NewCountUnclaimedUseCase(repo, clock, log),
		listUC:           usecases.NewListVouchersUseCase(repo, hook, clock, log),
		statsUC:          usecases.NewGetStatsUseCase(repo, hook, clock, log),
		revealUC:         usecases.NewRevealIssuerRefUseCase(cipher, log),
	}
}

func (s *Store) CreateVoucher(ctx context.Context, cmd usecases.CreateVoucherCommand) (*voucher.Voucher, error) {
	return s.createUC.Execute(ctx, cmd)
}

// GetVoucher returns the voucher only while it is redeemable.
func (s *Store) GetVoucher(ctx context.Context, id string) (*voucher.Voucher, error) {
	return s.getUC.Execute(ctx, id)
}

func (s *Store) GetVoucherWithStatus(ctx context.Context, id string) (*voucher.Voucher, error) {
	return s.getWithStatusUC.Execute(ctx, id)
}

func (s *Store) ClaimVoucher(ctx context.Context, id string) (bool, error) {
	return s.claimUC.Execute(ctx, id)
}

func (s *Store) UnclaimVoucher(ctx context.Context, id string) (bool, error) {
	return s.unclaimUC.Execute(ctx, id)
}

func (s *Store) CancelVoucher(ctx context.Context, id string) (bool, error) {
	return s.cancelUC.Execute(ctx, id)
}

func (s *Store) GetUnclaimedCountByWallet(ctx context.Context, walletID string) (int, error) {
	return s.countUnclaimedUC.Execute(ctx, walletID)
}

func (s *Store) ListVouchers(ctx context.Context) ([]*voucher.Voucher, error) {
	return s.listUC.Execute(ctx)
}

func (s *Store) GetStats(ctx context.Context) (voucher.Stats, error) {
	return s.statsUC.Execute(ctx)
}

func (s *Store) RevealIssuerRef(ctx context.Context, v *voucher.Voucher) (string, error) {
	return s.revealUC.Execute(ctx, v)
}

// Sweeper exposes the retention sweeper for the scheduler and the sweep command.
func (s *Store) Sweeper() *services.RetentionSweeper {
	return s.sweeper
}
