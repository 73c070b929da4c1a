package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"festival-settlement/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentSettlements fires concurrent settlements against one customer
// wallet and verifies the locking keeps the balance exact: every debit lands
// exactly once and the final balance is arithmetic, not racy.
func TestConcurrentSettlements(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	customerID, customerToken := app.registerAndLogin(t, "conc-cust@example.com", domain.RoleCustomer)
	_, staffToken := app.registerAndLogin(t, "conc-staff@example.com", domain.RoleStaff)

	// 20 settlements of 45_000 each fit exactly twenty times into 900_000,
	// plus 100_000 headroom.
	app.topup(t, customerToken, 1_000_000)

	concurrency := 20
	var wg sync.WaitGroup
	var successCount, failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			resp := app.postJSON(t, "/api/v1/settlements", staffToken,
				app.settlementBody(customerID, fmt.Sprintf("conc-order-%d", idx), "WALLET_MAIN"))
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), successCount.Load())
	assert.Equal(t, int64(0), failCount.Load())
	assert.Equal(t, int64(100_000), app.balance(t, customerToken))
}

// TestConcurrentSettlementsInsufficientFunds races more settlements than the
// balance can cover. Exactly as many as fit may succeed; the wallet is never
// observed negative.
func TestConcurrentSettlementsInsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	customerID, customerToken := app.registerAndLogin(t, "race-cust@example.com", domain.RoleCustomer)
	_, staffToken := app.registerAndLogin(t, "race-staff@example.com", domain.RoleStaff)

	// 100_000 covers exactly two 45_000 bills.
	app.topup(t, customerToken, 100_000)

	attempts := 5
	var wg sync.WaitGroup
	var successCount, insufficientCount atomic.Int64

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			resp := app.postJSON(t, "/api/v1/settlements", staffToken,
				app.settlementBody(customerID, fmt.Sprintf("race-order-%d", idx), "WALLET_MAIN"))
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			default:
				t.Errorf("unexpected status %d", resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(2), successCount.Load())
	assert.Equal(t, int64(3), insufficientCount.Load())
	assert.Equal(t, int64(10_000), app.balance(t, customerToken))
}

// TestConcurrentFirstTouchSingleBoothWallet races several customers' first
// settlements at a fresh booth. Lazy creation must converge on one booth
// wallet holding every credit, not fragment revenue across duplicates.
func TestConcurrentFirstTouchSingleBoothWallet(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, staffToken := app.registerAndLogin(t, "touch-staff@example.com", domain.RoleStaff)

	customers := 8
	type customer struct{ id, token string }
	accounts := make([]customer, customers)
	for i := range accounts {
		id, token := app.registerAndLogin(t, fmt.Sprintf("touch-cust-%d@example.com", i), domain.RoleCustomer)
		app.topup(t, token, 50_000)
		accounts[i] = customer{id: id, token: token}
	}

	var wg sync.WaitGroup
	for i, c := range accounts {
		wg.Add(1)
		go func(idx int, c customer) {
			defer wg.Done()
			resp := app.postJSON(t, "/api/v1/settlements", staffToken,
				app.settlementBody(c.id, fmt.Sprintf("touch-order-%d", idx), "WALLET_MAIN"))
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}(i, c)
	}
	wg.Wait()

	ctx := context.Background()
	boothWallet, err := app.wallets.GetBooth(ctx, app.boothID)
	require.NoError(t, err)
	require.NotNil(t, boothWallet)
	assert.Equal(t, int64(customers)*45_000, boothWallet.Balance)

	count := 0
	app.wallets.mu.RLock()
	for _, w := range app.wallets.wallets {
		if w.Kind == domain.WalletKindBooth && w.BoothID != nil && *w.BoothID == app.boothID {
			count++
		}
	}
	app.wallets.mu.RUnlock()
	assert.Equal(t, 1, count)
}

// TestConcurrentTopups verifies concurrent credits all land.
func TestConcurrentTopups(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, customerToken := app.registerAndLogin(t, "topup-cust@example.com", domain.RoleCustomer)

	concurrency := 25
	amount := int64(10_000)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.postJSON(t, "/api/v1/wallets/topup", customerToken, map[string]any{"amount": amount})
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency)*amount, app.balance(t, customerToken))
}
