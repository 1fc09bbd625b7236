package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

func TestCreate_RecomputesAccountAndAppliesGoal(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", core.Expense)
	pay := f.category(t, "Pay", core.Income)
	acct := f.account(t, "Checking", 10000)
	goal := f.goal(t, "Bike")

	f.create(t, core.Transaction{CategoryID: pay.ID, AccountID: &acct.ID, Amount: core.Cents(5000), Date: core.NewDate(2024, 1, 1), GoalID: &goal.ID})
	f.create(t, core.Transaction{CategoryID: food.ID, AccountID: &acct.ID, Amount: core.Cents(-1200), Date: core.NewDate(2024, 1, 2)})

	if got := f.accountBalance(t, acct.ID); got.Cents != 13800 {
		t.Errorf("account balance = %d, want 13800", got.Cents)
	}
	if got := f.goalBalance(t, goal.ID); got.Cents != 5000 {
		t.Errorf("goal balance = %d, want 5000", got.Cents)
	}
	if ops := f.events.ops(); len(ops) != 2 || ops[0] != amqp.OpCreated {
		t.Errorf("events = %v, want two created", ops)
	}
}

func TestUpdate_ExpenseToIncomeMovesGoalByTwiceAmount(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", core.Expense)
	refund := f.category(t, "Refund", core.Income)
	goal := f.goal(t, "Trip")

	tx := f.create(t, core.Transaction{CategoryID: food.ID, Amount: core.Cents(5000), Date: core.NewDate(2024, 1, 1), GoalID: &goal.ID})
	before := f.goalBalance(t, goal.ID)

	tx.CategoryID = refund.ID
	if _, err := f.txs.Update(context.Background(), owner, tx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	after := f.goalBalance(t, goal.ID)
	if diff := after.Sub(before); diff.Cents != 10000 {
		t.Errorf("goal moved by %d, want 10000", diff.Cents)
	}
}

func TestDelete_ReversesContribution(t *testing.T) {
	f := newFixture(t)
	pay := f.category(t, "Pay", core.Income)
	goal := f.goal(t, "House")

	f.create(t, core.Transaction{CategoryID: pay.ID, Amount: core.Cents(15000), Date: core.NewDate(2024, 1, 1), GoalID: &goal.ID})
	tx := f.create(t, core.Transaction{CategoryID: pay.ID, Amount: core.Cents(5000), Date: core.NewDate(2024, 1, 2), GoalID: &goal.ID})
	if got := f.goalBalance(t, goal.ID); got.Cents != 20000 {
		t.Fatalf("goal balance = %d, want 20000", got.Cents)
	}

	if err := f.txs.Delete(context.Background(), owner, tx.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := f.goalBalance(t, goal.ID); got.Cents != 15000 {
		t.Errorf("goal balance = %d, want 15000", got.Cents)
	}
	if _, err := f.txs.Get(context.Background(), owner, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
}

func TestUpdate_RecomputesOldAndNewAccount(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", core.Expense)
	a := f.account(t, "A", 10000)
	b := f.account(t, "B", 10000)

	tx := f.create(t, core.Transaction{CategoryID: food.ID, AccountID: &a.ID, Amount: core.Cents(-2500), Date: core.NewDate(2024, 1, 1)})
	tx.AccountID = &b.ID
	if _, err := f.txs.Update(context.Background(), owner, tx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := f.accountBalance(t, a.ID); got.Cents != 10000 {
		t.Errorf("old account balance = %d, want 10000", got.Cents)
	}
	if got := f.accountBalance(t, b.ID); got.Cents != 7500 {
		t.Errorf("new account balance = %d, want 7500", got.Cents)
	}
	if n := len(f.events.msgs[len(f.events.msgs)-1].AccountIDs); n != 2 {
		t.Errorf("update event lists %d accounts, want 2", n)
	}
}

func TestUpdate_FailureRollsBack(t *testing.T) {
	f := newFixture(t)
	pay := f.category(t, "Pay", core.Income)
	goal := f.goal(t, "Car")
	tx := f.create(t, core.Transaction{CategoryID: pay.ID, Amount: core.Cents(3000), Date: core.NewDate(2024, 1, 1), GoalID: &goal.ID})

	tx.AccountID = int64p(9999)
	tx.Amount = core.Cents(100)
	_, err := f.txs.Update(context.Background(), owner, tx)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update() error = %v, want not found", err)
	}

	stored, err := f.txs.Get(context.Background(), owner, tx.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Amount.Cents != 3000 || stored.AccountID != nil {
		t.Errorf("stored = %+v, want unchanged", stored)
	}
	if got := f.goalBalance(t, goal.ID); got.Cents != 3000 {
		t.Errorf("goal balance = %d, want 3000", got.Cents)
	}
}

func TestCreate_ReferencesMustBelongToOwner(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", core.Expense)
	ctx := context.Background()

	tests := []struct {
		name  string
		owner string
		tx    core.Transaction
		want  error
	}{
		{"missing category", owner, core.Transaction{CategoryID: 999, Amount: core.Cents(-1), Date: core.NewDate(2024, 1, 1)}, core.ErrNotFound},
		{"missing account", owner, core.Transaction{CategoryID: food.ID, AccountID: int64p(999), Amount: core.Cents(-1), Date: core.NewDate(2024, 1, 1)}, core.ErrNotFound},
		{"missing goal", owner, core.Transaction{CategoryID: food.ID, GoalID: int64p(999), Amount: core.Cents(-1), Date: core.NewDate(2024, 1, 1)}, core.ErrNotFound},
		{"other owner's category", "bob", core.Transaction{CategoryID: food.ID, Amount: core.Cents(-1), Date: core.NewDate(2024, 1, 1)}, core.ErrNotFound},
		{"zero amount", owner, core.Transaction{CategoryID: food.ID, Date: core.NewDate(2024, 1, 1)}, core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.txs.Create(ctx, tt.owner, tt.tx); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := len(f.events.ops()); n != 0 {
		t.Errorf("%d events published for failed mutations", n)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	food := f.category(t, "Food", core.Expense)

	if _, err := f.txs.Create(context.Background(), owner, core.Transaction{CategoryID: food.ID, Amount: core.Cents(-100), Date: core.NewDate(2024, 1, 1)}); err != nil {
		t.Fatalf("Create() error = %v, want nil despite publish failure", err)
	}
}

func TestOnChangeHook(t *testing.T) {
	f := newFixture(t)
	var owners []string
	f.txs.OnChange(func(o string) { owners = append(owners, o) })
	food := f.category(t, "Food", core.Expense)

	f.create(t, core.Transaction{CategoryID: food.ID, Amount: core.Cents(-100), Date: core.NewDate(2024, 1, 1)})
	if len(owners) != 1 || owners[0] != owner {
		t.Errorf("OnChange owners = %v, want [%s]", owners, owner)
	}
}

func TestGoalTracker_MissingGoalIsSkipped(t *testing.T) {
	f := newFixture(t)
	err := f.repo.InTx(context.Background(), owner, func(sc *storage.Scope) error {
		return f.txs.Goals().Apply(context.Background(), sc, int64p(424242), core.Income, core.Cents(100))
	})
	if err != nil {
		t.Errorf("Apply() on missing goal error = %v, want nil", err)
	}
}

func TestLedgerRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food", core.Expense)
	pay := f.category(t, "Pay", core.Income)
	acct := f.account(t, "Main", 5000)
	f.create(t, core.Transaction{CategoryID: food.ID, AccountID: &acct.ID, Amount: core.Cents(-700), Date: core.NewDate(2024, 1, 1)})
	f.create(t, core.Transaction{CategoryID: pay.ID, AccountID: &acct.ID, Amount: core.Cents(2000), Date: core.NewDate(2024, 1, 2)})

	first, err := f.refs.RecomputeAccount(context.Background(), owner, acct.ID)
	if err != nil {
		t.Fatalf("RecomputeAccount() error = %v", err)
	}
	second, err := f.refs.RecomputeAccount(context.Background(), owner, acct.ID)
	if err != nil {
		t.Fatalf("RecomputeAccount() error = %v", err)
	}
	if first != second || first.Cents != 6300 {
		t.Errorf("RecomputeAccount() = %d then %d, want 6300 twice", first.Cents, second.Cents)
	}
}

// TestRandomMutationsKeepGoalsConsistent checks that after every step of a
// random sequence of creates, edits and deletes each goal equals its
// from-scratch sum.
func TestRandomMutationsKeepGoalsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cats := []core.Category{
		f.category(t, "Pay", core.Income),
		f.category(t, "Food", core.Expense),
		f.category(t, "Gift", core.Income),
	}
	goals := []core.SavingsGoal{f.goal(t, "G1"), f.goal(t, "G2")}

	rng := rand.New(rand.NewSource(42))
	randomGoal := func() *int64 {
		switch rng.Intn(3) {
		case 0:
			return nil
		default:
			return &goals[rng.Intn(len(goals))].ID
		}
	}
	randomAmount := func() core.Money {
		v := int64(rng.Intn(20000) - 10000)
		if v == 0 {
			v = 1
		}
		return core.Cents(v)
	}

	var live []core.Transaction
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			tx, err := f.txs.Create(ctx, owner, core.Transaction{
				CategoryID: cats[rng.Intn(len(cats))].ID,
				Amount:     randomAmount(),
				Date:       core.NewDate(2024, 1+rng.Intn(12), 1+rng.Intn(28)),
				GoalID:     randomGoal(),
			})
			if err != nil {
				t.Fatalf("step %d Create() error = %v", i, err)
			}
			live = append(live, tx)
		case op == 1:
			j := rng.Intn(len(live))
			tx := live[j]
			tx.CategoryID = cats[rng.Intn(len(cats))].ID
			tx.Amount = randomAmount()
			tx.GoalID = randomGoal()
			updated, err := f.txs.Update(ctx, owner, tx)
			if err != nil {
				t.Fatalf("step %d Update() error = %v", i, err)
			}
			live[j] = updated
		default:
			j := rng.Intn(len(live))
			if err := f.txs.Delete(ctx, owner, live[j].ID); err != nil {
				t.Fatalf("step %d Delete() error = %v", i, err)
			}
			live = append(live[:j], live[j+1:]...)
		}

		for _, g := range goals {
			stored := f.goalBalance(t, g.ID)
			sum, err := f.repo.ForOwner(owner).SumGoalContributions(ctx, g.ID)
			if err != nil {
				t.Fatalf("step %d SumGoalContributions() error = %v", i, err)
			}
			if stored != sum {
				t.Fatalf("step %d goal %s: stored %d, computed %d", i, g.Name, stored.Cents, sum.Cents)
			}
		}
	}

	for _, g := range goals {
		before, after, err := f.refs.ReconcileGoal(ctx, owner, g.ID)
		if err != nil {
			t.Fatalf("ReconcileGoal() error = %v", err)
		}
		if before != after {
			t.Errorf("goal %s drifted: stored %d, computed %d", g.Name, before.Cents, after.Cents)
		}
	}
}

func TestReconcileGoal_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pay := f.category(t, "Pay", core.Income)
	goal := f.goal(t, "Fund")
	f.create(t, core.Transaction{CategoryID: pay.ID, Amount: core.Cents(4000), Date: core.NewDate(2024, 1, 1), GoalID: &goal.ID})

	if err := f.repo.ForOwner(owner).SetGoalBalance(ctx, goal.ID, core.Cents(1)); err != nil {
		t.Fatalf("SetGoalBalance() error = %v", err)
	}
	before, after, err := f.refs.ReconcileGoal(ctx, owner, goal.ID)
	if err != nil {
		t.Fatalf("ReconcileGoal() error = %v", err)
	}
	if before.Cents != 1 || after.Cents != 4000 {
		t.Errorf("ReconcileGoal() = %d, %d, want 1, 4000", before.Cents, after.Cents)
	}
	if got := f.goalBalance(t, goal.ID); got.Cents != 4000 {
		t.Errorf("goal balance = %d, want 4000", got.Cents)
	}
}

func TestCreate_RejectsOutOfRangeAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pay := f.category(t, "Pay", core.Income)
	goal := f.goal(t, "Vault")

	_, err := f.txs.Create(ctx, owner, core.Transaction{
		CategoryID: pay.ID,
		Amount:     core.Cents(core.MaxAmountCents + 1),
		Date:       core.NewDate(2024, 1, 1),
		GoalID:     &goal.ID,
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Fatalf("Create() error = %v, want amount validation error", err)
	}

	// The largest accepted amount, repeated, keeps the goal readable.
	for i := 0; i < 101; i++ {
		f.create(t, core.Transaction{
			CategoryID: pay.ID,
			Amount:     core.Cents(core.MaxAmountCents),
			Date:       core.NewDate(2024, 1, 1),
			GoalID:     &goal.ID,
		})
	}
	if got, want := f.goalBalance(t, goal.ID).Cents, int64(101*core.MaxAmountCents); got != want {
		t.Errorf("goal balance = %d, want %d", got, want)
	}
}
