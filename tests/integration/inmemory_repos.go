package integration

import (
	"context"
	"strings"
	"sync"
	"time"

	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return apperror.ErrEmailExists()
		}
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) UpdateBankDetails(ctx context.Context, id uuid.UUID, bankName, encryptedNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return apperror.ErrNotFound("Account")
	}
	a.BankName = &bankName
	a.BankNumber = &encryptedNumber
	a.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

// Create mirrors the Postgres repo's ON CONFLICT DO NOTHING insert: the
// owner key is unique per kind, so a racing duplicate is silently dropped
// and callers re-read to converge on the surviving row.
func (r *inMemoryWalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if sameWalletOwner(existing, wallet) {
			return nil
		}
	}
	cp := *wallet
	r.wallets[wallet.ID] = &cp
	return nil
}

func sameWalletOwner(a, b *domain.Wallet) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case domain.WalletKindPersonal:
		return a.AccountID != nil && b.AccountID != nil && *a.AccountID == *b.AccountID
	case domain.WalletKindFestival:
		return a.AccountID != nil && b.AccountID != nil && *a.AccountID == *b.AccountID &&
			a.FestivalID != nil && b.FestivalID != nil && *a.FestivalID == *b.FestivalID
	case domain.WalletKindBooth:
		return a.BoothID != nil && b.BoothID != nil && *a.BoothID == *b.BoothID
	}
	return false
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetPersonal(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Kind == domain.WalletKindPersonal && w.AccountID != nil && *w.AccountID == accountID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetFestival(ctx context.Context, accountID, festivalID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Kind == domain.WalletKindFestival &&
			w.AccountID != nil && *w.AccountID == accountID &&
			w.FestivalID != nil && *w.FestivalID == festivalID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetBooth(ctx context.Context, boothID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Kind == domain.WalletKindBooth && w.BoothID != nil && *w.BoothID == boothID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

// ApplyDelta mirrors the conditional UPDATE the Postgres repo runs: the
// balance check and the write happen under one lock, so a delta that would
// drive the balance negative is rejected atomically.
func (r *inMemoryWalletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return apperror.ErrNotFound("Wallet")
	}
	if w.Balance+delta < 0 {
		return apperror.ErrInsufficientBalance()
	}
	w.Balance += delta
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerRepo) List(ctx context.Context, filter ports.LedgerFilter) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if filter.AccountID != nil && e.AccountID != *filter.AccountID {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]domain.OrderItem
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]domain.OrderItem),
	}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) CreateItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.items[it.OrderID] = append(r.items[it.OrderID], it)
	}
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByReference(ctx context.Context, accountID uuid.UUID, referenceID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.AccountID == accountID && o.ReferenceID == referenceID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.items[orderID]
	out := make([]domain.OrderItem, len(items))
	copy(out, items)
	return out, nil
}

func (r *inMemoryOrderRepo) CompleteIfPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	now := time.Now()
	o.Status = domain.OrderStatusCompleted
	o.SettledAt = &now
	return true, nil
}

// --- In-Memory Refund Request Repo ---

type inMemoryRefundRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.RefundRequest
}

func newInMemoryRefundRepo() *inMemoryRefundRepo {
	return &inMemoryRefundRepo{requests: make(map[uuid.UUID]*domain.RefundRequest)}
}

func (r *inMemoryRefundRepo) Create(ctx context.Context, req *domain.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *inMemoryRefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryRefundRepo) List(ctx context.Context, status *domain.RefundStatus) ([]domain.RefundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.RefundRequest
	for _, req := range r.requests {
		if status != nil && req.Status != *status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *inMemoryRefundRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RefundStatusPending {
		return false, nil
	}
	req.Status = domain.RefundStatusProcessed
	req.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryRefundRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

// --- In-Memory Commission Repo ---

type inMemoryCommissionRepo struct {
	mu         sync.RWMutex
	byFestival map[uuid.UUID]*domain.CommissionWithdrawal
}

func newInMemoryCommissionRepo() *inMemoryCommissionRepo {
	return &inMemoryCommissionRepo{byFestival: make(map[uuid.UUID]*domain.CommissionWithdrawal)}
}

// Create enforces the one-withdrawal-per-festival uniqueness the Postgres
// repo gets from a unique index.
func (r *inMemoryCommissionRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.CommissionWithdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFestival[w.FestivalID]; exists {
		return apperror.ErrCommissionAlreadyWithdrawn()
	}
	cp := *w
	r.byFestival[w.FestivalID] = &cp
	return nil
}

func (r *inMemoryCommissionRepo) GetByFestival(ctx context.Context, festivalID uuid.UUID) (*domain.CommissionWithdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byFestival[festivalID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// --- In-Memory Festival Repo ---

type inMemoryFestivalRepo struct {
	mu        sync.RWMutex
	festivals map[uuid.UUID]*domain.Festival
	booths    map[uuid.UUID]*domain.Booth
}

func newInMemoryFestivalRepo() *inMemoryFestivalRepo {
	return &inMemoryFestivalRepo{
		festivals: make(map[uuid.UUID]*domain.Festival),
		booths:    make(map[uuid.UUID]*domain.Booth),
	}
}

func (r *inMemoryFestivalRepo) seed(f *domain.Festival, b *domain.Booth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.festivals[f.ID] = f
	r.booths[b.ID] = b
}

func (r *inMemoryFestivalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Festival, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.festivals[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *inMemoryFestivalRepo) GetBooth(ctx context.Context, id uuid.UUID) (*domain.Booth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.booths[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// --- In-Memory Bank Repo ---

type inMemoryBankRepo struct{}

func (r *inMemoryBankRepo) List(ctx context.Context) ([]domain.Bank, error) {
	return []domain.Bank{
		{Code: "004", Name: "First National"},
		{Code: "088", Name: "Harbor Savings"},
	}, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.logs[log.Key]; exists {
		return apperror.ErrDuplicateSettlement()
	}
	cp := *log
	r.logs[log.Key] = &cp
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serialises all "transactions" behind one mutex so the
// in-memory repos observe the same lock discipline the row locks provide in
// Postgres. Commit and Rollback both release the lock.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

type serialTx struct {
	noopTx
	release *sync.Mutex
	done    bool
}

func (t *serialTx) Commit(ctx context.Context) error {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
	return nil
}

func (t *serialTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
	return nil
}

// noopTx satisfies pgx.Tx for repos that never touch a real connection.
type noopTx struct{}

func (t noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t noopTx) Commit(ctx context.Context) error          { return nil }
func (t noopTx) Rollback(ctx context.Context) error        { return nil }
func (t noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t noopTx) Conn() *pgx.Conn                                               { return nil }

// --- Stub Payment Gateway ---

// stubGateway opens fake checkout sessions and remembers the last request so
// tests can drive the return callback.
type stubGateway struct {
	mu   sync.Mutex
	last *ports.CheckoutRequest
	fail bool
}

func (g *stubGateway) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, context.DeadlineExceeded
	}
	cp := req
	g.last = &cp
	return &ports.CheckoutSession{
		SessionID:   "sess-" + req.OrderID.String(),
		CheckoutURL: "https://checkout.example.com/" + req.OrderID.String(),
	}, nil
}
