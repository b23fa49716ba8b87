package accounts

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

type memoryAccountRepo struct {
	accounts map[int64]Account
	postings map[int64]bool
	nextID   int64

	tbVersion int64
	pending   int64
}

type memoryAccountTx struct {
	repo *memoryAccountRepo
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[int64]Account), postings: make(map[int64]bool)}
}

func (r *memoryAccountRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]Account, len(r.accounts))
	for id, acc := range r.accounts {
		snapshot[id] = acc
	}
	r.pending = 0
	if err := fn(ctx, &memoryAccountTx{repo: r}); err != nil {
		r.accounts = snapshot
		return err
	}
	r.tbVersion += r.pending
	return nil
}

func (r *memoryAccountRepo) Get(ctx context.Context, companyID, id int64) (Account, error) {
	acc, ok := r.accounts[id]
	if !ok || acc.CompanyID != companyID {
		return Account{}, shared.ErrAccountNotFound
	}
	return acc, nil
}

func (r *memoryAccountRepo) List(ctx context.Context, companyID int64) ([]Account, error) {
	var out []Account
	for _, acc := range r.accounts {
		if acc.CompanyID == companyID {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memoryAccountRepo) FindByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	for _, acc := range r.accounts {
		if acc.CompanyID == companyID && acc.Code == code {
			return acc, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

func (t *memoryAccountTx) GetForUpdate(ctx context.Context, companyID, id int64) (Account, error) {
	return t.repo.Get(ctx, companyID, id)
}

func (t *memoryAccountTx) CodeExists(ctx context.Context, companyID int64, code string) (bool, error) {
	_, err := t.repo.FindByCode(ctx, companyID, code)
	return err == nil, nil
}

func (t *memoryAccountTx) HasPostings(ctx context.Context, accountID int64) (bool, error) {
	return t.repo.postings[accountID], nil
}

func (t *memoryAccountTx) CountChildren(ctx context.Context, accountID int64) (int, error) {
	count := 0
	for _, acc := range t.repo.accounts {
		if acc.ParentID != nil && *acc.ParentID == accountID {
			count++
		}
	}
	return count, nil
}

func (t *memoryAccountTx) Insert(ctx context.Context, acc Account) (Account, error) {
	t.repo.nextID++
	acc.ID = t.repo.nextID
	t.repo.accounts[acc.ID] = acc
	return acc, nil
}

func (t *memoryAccountTx) Update(ctx context.Context, acc Account) error {
	t.repo.accounts[acc.ID] = acc
	return nil
}

func (t *memoryAccountTx) SetGroup(ctx context.Context, accountID int64, isGroup bool) error {
	acc := t.repo.accounts[accountID]
	acc.IsGroup = isGroup
	t.repo.accounts[accountID] = acc
	return nil
}

func (t *memoryAccountTx) Delete(ctx context.Context, accountID int64) error {
	delete(t.repo.accounts, accountID)
	return nil
}

func (t *memoryAccountTx) MarkTrialBalanceStale(ctx context.Context, companyID int64) error {
	t.repo.pending++
	return nil
}

type recordingNotifier struct {
	companies []int64
}

func (n *recordingNotifier) LedgerChanged(ctx context.Context, companyID int64) error {
	n.companies = append(n.companies, companyID)
	return nil
}

var acme = platformshared.Tenant{CompanyID: 1, UserID: 10}

func TestCreateAccountPromotesParent(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	assets, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1000", Name: "Current Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	require.Equal(t, 1, assets.Level)
	require.False(t, assets.IsGroup)

	cash, err := svc.CreateAccount(ctx, acme, CreateAccountInput{
		Code: "1010", Name: "Cash", Type: "ASSET", ParentID: &assets.ID,
		CashFlowClass: CashFlowCash, MappingCode: "BS_ASSET_CA_CASH",
		OpeningBalance: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.Equal(t, 2, cash.Level)
	require.Equal(t, AccountTypeAsset, cash.Type)
	require.Equal(t, SideDebit, cash.OpeningBalanceSide)

	parent, err := svc.Get(ctx, acme, assets.ID)
	require.NoError(t, err)
	require.True(t, parent.IsGroup)
}

func TestCreateAccountRejections(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1000", Name: "Cash", Type: AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1000", Name: "Dup", Type: AccountTypeAsset})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)

	other := platformshared.Tenant{CompanyID: 2}
	parentID := int64(1)
	_, err = svc.CreateAccount(ctx, other, CreateAccountInput{Code: "1100", Name: "Bank", Type: AccountTypeAsset, ParentID: &parentID})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)

	_, err = svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "4000", Name: "Sales", Type: AccountTypeIncome, CashFlowClass: CashFlowCash})
	require.ErrorIs(t, err, shared.ErrInvalidCashFlowClass)

	repo.postings[1] = true
	_, err = svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1001", Name: "Petty", Type: AccountTypeAsset, ParentID: &parentID})
	require.ErrorIs(t, err, shared.ErrParentHasPostings)
	require.Len(t, repo.accounts, 1)
}

func TestDeleteAccountRules(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	group, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "2000", Name: "Liabilities", Type: AccountTypeLiability, IsGroup: true})
	require.NoError(t, err)
	payables, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "2100", Name: "Payables", Type: AccountTypeLiability, ParentID: &group.ID, CashFlowClass: CashFlowPayable})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteAccount(ctx, acme, group.ID), shared.ErrHasChildren)

	repo.postings[payables.ID] = true
	require.ErrorIs(t, svc.DeleteAccount(ctx, acme, payables.ID), shared.ErrAccountInUse)

	repo.postings[payables.ID] = false
	require.NoError(t, svc.DeleteAccount(ctx, acme, payables.ID))
	parent, err := svc.Get(ctx, acme, group.ID)
	require.NoError(t, err)
	require.False(t, parent.IsGroup)
}

func TestUpdateAccountKeepsHierarchy(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1500", Name: "Plant", Type: AccountTypeAsset, CashFlowClass: CashFlowFixedAsset})
	require.NoError(t, err)

	name := "Plant & Machinery"
	class := CashFlowBorrowing
	_, err = svc.UpdateAccount(ctx, acme, acc.ID, UpdateAccountInput{CashFlowClass: &class})
	require.ErrorIs(t, err, shared.ErrInvalidCashFlowClass)

	updated, err := svc.UpdateAccount(ctx, acme, acc.ID, UpdateAccountInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Nil(t, updated.ParentID)
}

func TestServiceRequiresTenant(t *testing.T) {
	svc := NewService(newMemoryAccountRepo(), nil)
	_, err := svc.List(context.Background(), platformshared.Tenant{})
	require.ErrorIs(t, err, platformshared.ErrTenantRequired)
}

func TestOpeningBalanceChangesInvalidateTrialBalance(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	notifier := &recordingNotifier{}
	svc.WithNotifier(notifier)
	ctx := context.Background()

	plain, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1200", Name: "Receivables", Type: AccountTypeAsset})
	require.NoError(t, err)
	require.Zero(t, repo.tbVersion)

	cash, err := svc.CreateAccount(ctx, acme, CreateAccountInput{
		Code: "1010", Name: "Cash", Type: AccountTypeAsset, CashFlowClass: CashFlowCash,
		OpeningBalance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.tbVersion)

	name := "Cash in hand"
	_, err = svc.UpdateAccount(ctx, acme, cash.ID, UpdateAccountInput{Name: &name})
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.tbVersion)

	opening := decimal.NewFromInt(5000)
	_, err = svc.UpdateAccount(ctx, acme, cash.ID, UpdateAccountInput{OpeningBalance: &opening})
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.tbVersion)

	mapping := "BS_ASSET_CA_TRADE_RECEIVABLES"
	_, err = svc.UpdateAccount(ctx, acme, plain.ID, UpdateAccountInput{MappingCode: &mapping})
	require.NoError(t, err)
	require.EqualValues(t, 3, repo.tbVersion)

	require.NoError(t, svc.DeleteAccount(ctx, acme, cash.ID))
	require.EqualValues(t, 4, repo.tbVersion)
	require.Equal(t, []int64{1, 1, 1, 1}, notifier.companies)

	bad := CashFlowBorrowing
	_, err = svc.UpdateAccount(ctx, acme, plain.ID, UpdateAccountInput{CashFlowClass: &bad})
	require.ErrorIs(t, err, shared.ErrInvalidCashFlowClass)
	require.EqualValues(t, 4, repo.tbVersion)
	require.Len(t, notifier.companies, 4)
}

func TestOpeningBalancesStayOnLeaves(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	bank, err := svc.CreateAccount(ctx, acme, CreateAccountInput{
		Code: "1100", Name: "Bank", Type: AccountTypeAsset, CashFlowClass: CashFlowCash,
		OpeningBalance: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1101", Name: "Bank Current", Type: AccountTypeAsset, ParentID: &bank.ID, CashFlowClass: CashFlowCash})
	require.ErrorIs(t, err, shared.ErrParentHasOpening)
	parent, err := svc.Get(ctx, acme, bank.ID)
	require.NoError(t, err)
	require.False(t, parent.IsGroup)
	require.Len(t, repo.accounts, 1)

	_, err = svc.CreateAccount(ctx, acme, CreateAccountInput{
		Code: "1000", Name: "Current Assets", Type: AccountTypeAsset, IsGroup: true,
		OpeningBalance: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, shared.ErrGroupOpening)

	group, err := svc.CreateAccount(ctx, acme, CreateAccountInput{Code: "1000", Name: "Current Assets", Type: AccountTypeAsset, IsGroup: true})
	require.NoError(t, err)
	opening := decimal.NewFromInt(75)
	_, err = svc.UpdateAccount(ctx, acme, group.ID, UpdateAccountInput{OpeningBalance: &opening})
	require.ErrorIs(t, err, shared.ErrGroupOpening)
}
