package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// fakeLedger is an in-memory UnitOfWork for service tests. WithinTx holds a
// mutex for the whole callback so concurrent units of work serialize the way
// row locks do in Postgres, and restores a snapshot when the callback fails
// so rollback semantics hold too.
type fakeLedger struct {
	txMu sync.Mutex
	mu   sync.Mutex

	accounts     map[int64]models.Account
	cards        map[int64]models.Card
	transactions map[int64]models.Transaction
	payments     map[int64]models.Payment

	nextAccountID     int64
	nextCardID        int64
	nextTransactionID int64
	nextPaymentID     int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts:     make(map[int64]models.Account),
		cards:        make(map[int64]models.Card),
		transactions: make(map[int64]models.Transaction),
		payments:     make(map[int64]models.Payment),
	}
}

func (f *fakeLedger) ledger() Ledger {
	return Ledger{
		Accounts:     &fakeAccountStore{f},
		Cards:        &fakeCardStore{f},
		Transactions: &fakeTransactionStore{f},
		Payments:     &fakePaymentStore{f},
	}
}

func (f *fakeLedger) WithinTx(ctx context.Context, fn func(l Ledger) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	snap := f.snapshot()
	if err := fn(f.ledger()); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeLedger) View() Ledger {
	return f.ledger()
}

type ledgerSnapshot struct {
	accounts     map[int64]models.Account
	cards        map[int64]models.Card
	transactions map[int64]models.Transaction
	payments     map[int64]models.Payment
}

func (f *fakeLedger) snapshot() ledgerSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := ledgerSnapshot{
		accounts:     make(map[int64]models.Account, len(f.accounts)),
		cards:        make(map[int64]models.Card, len(f.cards)),
		transactions: make(map[int64]models.Transaction, len(f.transactions)),
		payments:     make(map[int64]models.Payment, len(f.payments)),
	}
	for k, v := range f.accounts {
		snap.accounts[k] = v
	}
	for k, v := range f.cards {
		snap.cards[k] = v
	}
	for k, v := range f.transactions {
		snap.transactions[k] = v
	}
	for k, v := range f.payments {
		snap.payments[k] = v
	}
	return snap
}

func (f *fakeLedger) restore(snap ledgerSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = snap.accounts
	f.cards = snap.cards
	f.transactions = snap.transactions
	f.payments = snap.payments
}

// seedAccount inserts an account and returns it with its assigned id.
func (f *fakeLedger) seedAccount(a models.Account) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		f.nextAccountID++
		a.ID = f.nextAccountID
	}
	f.accounts[a.ID] = a
	return a
}

func (f *fakeLedger) seedCard(c models.Card) models.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		f.nextCardID++
		c.ID = f.nextCardID
	}
	f.cards[c.ID] = c
	return c
}

func (f *fakeLedger) seedTransaction(t models.Transaction) models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		f.nextTransactionID++
		t.ID = f.nextTransactionID
	}
	f.transactions[t.ID] = t
	return t
}

func (f *fakeLedger) seedPayment(p models.Payment) models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextPaymentID++
		p.ID = f.nextPaymentID
	}
	f.payments[p.ID] = p
	return p
}

func (f *fakeLedger) account(id int64) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id]
}

func (f *fakeLedger) paymentsByAccount(accountID int64) []models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeLedger) transactionsByAccount(accountID int64) []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- account store ---

type fakeAccountStore struct{ f *fakeLedger }

func (s *fakeAccountStore) FindByID(ctx context.Context, id int64) (models.Account, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	a, ok := s.f.accounts[id]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (s *fakeAccountStore) FindByIDForUpdate(ctx context.Context, id int64) (models.Account, error) {
	return s.FindByID(ctx, id)
}

func (s *fakeAccountStore) FindByClientID(ctx context.Context, clientID string) ([]models.Account, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Account
	for _, a := range s.f.accounts {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeAccountStore) FindByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Account
	for _, a := range s.f.accounts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeAccountStore) Create(ctx context.Context, account *models.Account) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.nextAccountID++
	account.ID = s.f.nextAccountID
	s.f.accounts[account.ID] = *account
	return nil
}

func (s *fakeAccountStore) Update(ctx context.Context, account *models.Account) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.accounts[account.ID]; !ok {
		return models.ErrAccountNotFound
	}
	s.f.accounts[account.ID] = *account
	return nil
}

// --- card store ---

type fakeCardStore struct{ f *fakeLedger }

func (s *fakeCardStore) Create(ctx context.Context, card *models.Card) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.nextCardID++
	card.ID = s.f.nextCardID
	s.f.cards[card.ID] = *card
	return nil
}

func (s *fakeCardStore) Update(ctx context.Context, card *models.Card) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.cards[card.ID]; !ok {
		return models.ErrCardNotFound
	}
	s.f.cards[card.ID] = *card
	return nil
}

func (s *fakeCardStore) FindByCardCode(ctx context.Context, cardCode string) (models.Card, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, c := range s.f.cards {
		if c.CardCode == cardCode {
			return c, nil
		}
	}
	return models.Card{}, models.ErrCardNotFound
}

func (s *fakeCardStore) ExistsByCardCode(ctx context.Context, cardCode string) (bool, error) {
	_, err := s.FindByCardCode(ctx, cardCode)
	if err == models.ErrCardNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *fakeCardStore) FindByAccountID(ctx context.Context, accountID int64) ([]models.Card, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Card
	for _, c := range s.f.cards {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeCardStore) FindByStatus(ctx context.Context, status models.CardStatus) ([]models.Card, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Card
	for _, c := range s.f.cards {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- transaction store ---

type fakeTransactionStore struct{ f *fakeLedger }

func (s *fakeTransactionStore) Create(ctx context.Context, transaction *models.Transaction) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.nextTransactionID++
	transaction.ID = s.f.nextTransactionID
	s.f.transactions[transaction.ID] = *transaction
	return nil
}

func (s *fakeTransactionStore) Update(ctx context.Context, transaction *models.Transaction) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.transactions[transaction.ID]; !ok {
		return fmt.Errorf("transaction %d not found", transaction.ID)
	}
	s.f.transactions[transaction.ID] = *transaction
	return nil
}

func (s *fakeTransactionStore) cardIDByCode(cardCode string) (int64, bool) {
	for _, c := range s.f.cards {
		if c.CardCode == cardCode {
			return c.ID, true
		}
	}
	return 0, false
}

func (s *fakeTransactionStore) FindByCardCode(ctx context.Context, cardCode string) ([]models.Transaction, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cardID, ok := s.cardIDByCode(cardCode)
	if !ok {
		return nil, nil
	}
	var out []models.Transaction
	for _, t := range s.f.transactions {
		if t.CardID != nil && *t.CardID == cardID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *fakeTransactionStore) CountByCardCodeSince(ctx context.Context, cardCode string, since time.Time) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cardID, ok := s.cardIDByCode(cardCode)
	if !ok {
		return 0, nil
	}
	var count int64
	for _, t := range s.f.transactions {
		if t.CardID != nil && *t.CardID == cardID && t.Timestamp.After(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeTransactionStore) FindByAccountID(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.f.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *fakeTransactionStore) FindByAccountIDAndStatus(ctx context.Context, accountID int64, status models.TransactionStatus) ([]models.Transaction, error) {
	all, err := s.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	for _, t := range all {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- payment store ---

type fakePaymentStore struct{ f *fakeLedger }

func (s *fakePaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.nextPaymentID++
	payment.ID = s.f.nextPaymentID
	s.f.payments[payment.ID] = *payment
	return nil
}

func (s *fakePaymentStore) Update(ctx context.Context, payment *models.Payment) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.payments[payment.ID]; !ok {
		return models.ErrPaymentNotFound
	}
	s.f.payments[payment.ID] = *payment
	return nil
}

func (s *fakePaymentStore) FindByID(ctx context.Context, id int64) (models.Payment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	p, ok := s.f.payments[id]
	if !ok {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	return p, nil
}

func (s *fakePaymentStore) FindPendingByAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	return s.FindByAccountAndStatus(ctx, accountID, models.PaymentPending)
}

func (s *fakePaymentStore) FindDue(ctx context.Context, accountID int64, asOf time.Time) ([]models.Payment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Payment
	for _, p := range s.f.payments {
		if p.AccountID == accountID && p.Status == models.PaymentPending && !p.PaymentDate.After(asOf) {
			out = append(out, p)
		}
	}
	sortByPaymentDate(out)
	return out, nil
}

func (s *fakePaymentStore) FindByAccountAndStatus(ctx context.Context, accountID int64, status models.PaymentStatus) ([]models.Payment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Payment
	for _, p := range s.f.payments {
		if p.AccountID == accountID && p.Status == status {
			out = append(out, p)
		}
	}
	sortByPaymentDate(out)
	return out, nil
}

func (s *fakePaymentStore) CountExpiredByAccount(ctx context.Context, accountID int64) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var count int64
	for _, p := range s.f.payments {
		if p.AccountID == accountID && p.Expired {
			count++
		}
	}
	return count, nil
}

func (s *fakePaymentStore) FindPastExpiration(ctx context.Context, asOf time.Time) ([]models.Payment, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []models.Payment
	for _, p := range s.f.payments {
		if p.Status == models.PaymentPending && p.ExpirationDate != nil && !p.ExpirationDate.After(asOf) {
			out = append(out, p)
		}
	}
	sortByPaymentDate(out)
	return out, nil
}

func sortByPaymentDate(payments []models.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].PaymentDate.Before(payments[j].PaymentDate)
	})
}
