package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/cache"
	"github.com/bankledger/account-processing/internal/models"
)

// AccountCacheTTLs carries one TTL per cached query shape.
type AccountCacheTTLs struct {
	ByID     time.Duration
	ByClient time.Duration
	ByStatus time.Duration
	Active   time.Duration
}

// AccountService owns account state. Reads are served through TTL caches;
// every mutation runs in its own unit of work, re-reads the row under lock
// and invalidates the affected cache entries on the way out.
type AccountService struct {
	uow UnitOfWork

	byID     *cache.Cache[models.Account]
	byClient *cache.Cache[[]models.Account]
	byStatus *cache.Cache[[]models.Account]
	active   *cache.Cache[bool]
}

func NewAccountService(uow UnitOfWork, ttls AccountCacheTTLs, janitor *cache.Janitor) *AccountService {
	s := &AccountService{
		uow:      uow,
		byID:     cache.New[models.Account](ttls.ByID),
		byClient: cache.New[[]models.Account](ttls.ByClient),
		byStatus: cache.New[[]models.Account](ttls.ByStatus),
		active:   cache.New[bool](ttls.Active),
	}
	if janitor != nil {
		janitor.Register(s.byID)
		janitor.Register(s.byClient)
		janitor.Register(s.byStatus)
		janitor.Register(s.active)
	}
	return s
}

// FindByID returns the account, possibly from cache. Callers about to mutate
// a balance must not trust this value; mutations re-read under lock.
func (s *AccountService) FindByID(ctx context.Context, id int64) (models.Account, error) {
	key := cache.Key("account", id)
	if account, ok := s.byID.Get(key); ok {
		return account, nil
	}
	account, err := s.uow.View().Accounts.FindByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	s.byID.Set(key, account)
	return account, nil
}

func (s *AccountService) FindByClientID(ctx context.Context, clientID string) ([]models.Account, error) {
	key := cache.Key("accounts-by-client", clientID)
	if accounts, ok := s.byClient.Get(key); ok {
		return accounts, nil
	}
	accounts, err := s.uow.View().Accounts.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.byClient.Set(key, accounts)
	return accounts, nil
}

func (s *AccountService) FindByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error) {
	key := cache.Key("accounts-by-status", status)
	if accounts, ok := s.byStatus.Get(key); ok {
		return accounts, nil
	}
	accounts, err := s.uow.View().Accounts.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	s.byStatus.Set(key, accounts)
	return accounts, nil
}

// IsAccountActive reports whether the account exists and is ACTIVE. A missing
// account is false, not an error.
func (s *AccountService) IsAccountActive(ctx context.Context, id int64) (bool, error) {
	key := cache.Key("account-active", id)
	if active, ok := s.active.Get(key); ok {
		return active, nil
	}
	account, err := s.uow.View().Accounts.FindByID(ctx, id)
	if err == models.ErrAccountNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	active := account.Status == models.AccountActive
	s.active.Set(key, active)
	return active, nil
}

// Save persists the account, creating it when it has no id yet.
func (s *AccountService) Save(ctx context.Context, account *models.Account) error {
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		if account.ID == 0 {
			return l.Accounts.Create(ctx, account)
		}
		return l.Accounts.Update(ctx, account)
	})
	if err != nil {
		return err
	}
	s.invalidate(account)
	return nil
}

// UpdateBalance adds amount when isCredit, otherwise subtracts it, rejecting
// debits that would take the balance below zero. The row stays locked for the
// whole read-modify-write.
func (s *AccountService) UpdateBalance(ctx context.Context, id int64, amount decimal.Decimal, isCredit bool) error {
	var updated models.Account
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		account, err := l.Accounts.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if isCredit {
			account.Balance = account.Balance.Add(amount)
		} else {
			if account.Balance.LessThan(amount) {
				return models.ErrInsufficientFunds
			}
			account.Balance = account.Balance.Sub(amount)
		}
		if err := l.Accounts.Update(ctx, &account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(&updated)
	return nil
}

// BlockAccount sets the account status to BLOCKED.
func (s *AccountService) BlockAccount(ctx context.Context, id int64) error {
	var updated models.Account
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		account, err := l.Accounts.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		account.Status = models.AccountBlocked
		if err := l.Accounts.Update(ctx, &account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(&updated)
	return nil
}

func (s *AccountService) invalidate(account *models.Account) {
	s.byID.Delete(cache.Key("account", account.ID))
	s.active.Delete(cache.Key("account-active", account.ID))
	s.byClient.Delete(cache.Key("accounts-by-client", account.ClientID))
	// Status lists are keyed by status value; drop both the old and new side
	// conservatively since the pre-image is not tracked here.
	for _, st := range []models.AccountStatus{models.AccountActive, models.AccountBlocked, models.AccountArrested, models.AccountClosed} {
		s.byStatus.Delete(cache.Key("accounts-by-status", st))
	}
}
