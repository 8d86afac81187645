package engine

import (
	"errors"
	"testing"
	"time"

	"trail_miniapp/internal/domain"
)

func TestClassify_Ladder(t *testing.T) {
	cases := []struct {
		balance int64
		want    string
	}{
		{0, "Trail Hustler"},
		{450, "Trail Hustler"},
		{499, "Trail Hustler"},
		{500, "Novice Miner"},
		{999, "Novice Miner"},
		{1000, "Apprentice Miner"},
		{1500, "Skilled Miner"},
		{2000, "Expert Miner"},
		{2500, "Master Miner"},
		{3000, "Grandmaster Miner"},
		{3500, "Legendary Miner"},
		{4000, "Mythical Miner"},
		{4999, "Mythical Miner"},
		{5000, "Galactic Miner"},
		{1000000, "Galactic Miner"},
	}

	for _, c := range cases {
		if got := Classify(c.balance); got != c.want {
			t.Errorf("Classify(%d) = %q, want %q", c.balance, got, c.want)
		}
	}
}

// Walking the balance upward must never move the tier downward, and every
// balance must land in exactly one bin.
func TestClassify_Monotonic(t *testing.T) {
	rank := map[string]int{
		"Trail Hustler":     0,
		"Novice Miner":      1,
		"Apprentice Miner":  2,
		"Skilled Miner":     3,
		"Expert Miner":      4,
		"Master Miner":      5,
		"Grandmaster Miner": 6,
		"Legendary Miner":   7,
		"Mythical Miner":    8,
		"Galactic Miner":    9,
	}

	prev := -1
	for b := int64(0); b <= 6000; b += 25 {
		label := Classify(b)
		r, ok := rank[label]
		if !ok {
			t.Fatalf("Classify(%d) returned unknown label %q", b, label)
		}
		if r < prev {
			t.Fatalf("Classify not monotonic at balance %d: rank %d after %d", b, r, prev)
		}
		prev = r
	}
	if prev != rank["Galactic Miner"] {
		t.Fatalf("expected to end at the top tier, got rank %d", prev)
	}
}

func TestIsClaimable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !IsClaimable(nil, now) {
		t.Error("nil lastClaimed should be claimable")
	}

	justUnder := now.Add(-ClaimCooldown + time.Second)
	if IsClaimable(&justUnder, now) {
		t.Error("claim inside cooldown should not be claimable")
	}

	exact := now.Add(-ClaimCooldown)
	if !IsClaimable(&exact, now) {
		t.Error("claim exactly at cooldown boundary should be claimable")
	}
}

func TestClaimableIn(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if d := ClaimableIn(nil, now); d != 0 {
		t.Errorf("ClaimableIn(nil) = %v, want 0", d)
	}

	halfway := now.Add(-ClaimCooldown / 2)
	if d := ClaimableIn(&halfway, now); d != ClaimCooldown/2 {
		t.Errorf("ClaimableIn halfway = %v, want %v", d, ClaimCooldown/2)
	}

	old := now.Add(-2 * ClaimCooldown)
	if d := ClaimableIn(&old, now); d != 0 {
		t.Errorf("ClaimableIn past cooldown = %v, want 0", d)
	}
}

func TestSettleClaim(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	acc := &domain.Account{Balance: 450, MiningLevel: 1}
	res, err := SettleClaim(acc, now)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if res.Reward != 10 {
		t.Errorf("reward = %d, want miningLevel*10 = 10", res.Reward)
	}
	if res.NewBalance != 460 {
		t.Errorf("newBalance = %d, want 460", res.NewBalance)
	}
	if res.NewStatus != "Trail Hustler" {
		t.Errorf("newStatus = %q, want Trail Hustler", res.NewStatus)
	}
	if !res.NextClaimTime.Equal(now.Add(ClaimCooldown)) {
		t.Errorf("nextClaimTime = %v, want now + 7h", res.NextClaimTime)
	}

	// Immediately re-invoking with the advanced lastClaimed must fail until
	// the cooldown elapses.
	acc.Balance = res.NewBalance
	acc.LastClaimed = &res.LastClaimed
	if _, err := SettleClaim(acc, now.Add(time.Minute)); !errors.Is(err, ErrClaimTooEarly) {
		t.Fatalf("repeat claim: got %v, want ErrClaimTooEarly", err)
	}
	if _, err := SettleClaim(acc, now.Add(ClaimCooldown)); err != nil {
		t.Fatalf("claim after cooldown: %v", err)
	}
}

func TestSettleClaim_RewardScalesWithLevel(t *testing.T) {
	now := time.Now()
	for level := 1; level <= 20; level++ {
		acc := &domain.Account{Balance: 0, MiningLevel: level}
		res, err := SettleClaim(acc, now)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if res.Reward != int64(level)*10 {
			t.Errorf("level %d: reward = %d, want %d", level, res.Reward, level*10)
		}
	}
}

func TestSettleClaim_CrossesTierBoundary(t *testing.T) {
	acc := &domain.Account{Balance: 490, MiningLevel: 1}
	res, err := SettleClaim(acc, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.NewBalance != 500 || res.NewStatus != "Novice Miner" {
		t.Errorf("got balance=%d status=%q, want 500/Novice Miner", res.NewBalance, res.NewStatus)
	}
}

func TestSettleUpgrade(t *testing.T) {
	acc := &domain.Account{Balance: 500, MiningLevel: 4}
	res, err := SettleUpgrade(acc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cost != 400 {
		t.Errorf("cost = %d, want 400", res.Cost)
	}
	if res.NewBalance != 100 {
		t.Errorf("newBalance = %d, want 100", res.NewBalance)
	}
	if res.NewMiningLevel != 5 {
		t.Errorf("newMiningLevel = %d, want 5", res.NewMiningLevel)
	}
	if res.NewStatus != Classify(100) {
		t.Errorf("newStatus = %q, want %q", res.NewStatus, Classify(100))
	}
	if res.Milestone != "Reached Mining Level 5" {
		t.Errorf("milestone = %q, want %q", res.Milestone, "Reached Mining Level 5")
	}
}

func TestSettleUpgrade_InsufficientBalance(t *testing.T) {
	acc := &domain.Account{Balance: 399, MiningLevel: 4}
	if _, err := SettleUpgrade(acc); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	// Exact cost succeeds.
	acc.Balance = 400
	if _, err := SettleUpgrade(acc); err != nil {
		t.Fatalf("exact-cost upgrade: %v", err)
	}
}

func TestSettleUpgrade_MilestoneOnlyAtMultiplesOfFive(t *testing.T) {
	for level := 1; level <= 15; level++ {
		acc := &domain.Account{Balance: 1 << 20, MiningLevel: level}
		res, err := SettleUpgrade(acc)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		wantMilestone := (level+1)%5 == 0
		if (res.Milestone != "") != wantMilestone {
			t.Errorf("level %d -> %d: milestone %q, want present=%v",
				level, res.NewMiningLevel, res.Milestone, wantMilestone)
		}
	}
}

func TestSettleDailyLogin(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// Never logged in: grant.
	acc := &domain.Account{Balance: 0}
	res := SettleDailyLogin(acc, now)
	if !res.IsNewDay || res.NewBalance != 100 {
		t.Fatalf("first login: isNewDay=%v balance=%d, want true/100", res.IsNewDay, res.NewBalance)
	}

	// Same UTC day: no grant, no mutation.
	acc.Balance = res.NewBalance
	acc.LastLogin = &res.LastLogin
	res2 := SettleDailyLogin(acc, now.Add(5*time.Hour))
	if res2.IsNewDay || res2.NewBalance != 100 {
		t.Fatalf("same-day login: isNewDay=%v balance=%d, want false/100", res2.IsNewDay, res2.NewBalance)
	}

	// Next UTC day, even one minute past midnight: grant again.
	nextDay := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)
	res3 := SettleDailyLogin(acc, nextDay)
	if !res3.IsNewDay || res3.NewBalance != 200 {
		t.Fatalf("next-day login: isNewDay=%v balance=%d, want true/200", res3.IsNewDay, res3.NewBalance)
	}
}

func TestSettleDailyLogin_TimezoneIndependent(t *testing.T) {
	// 23:30 UTC and 00:30 UTC next day are different days regardless of the
	// wall clock the client saw.
	last := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	acc := &domain.Account{Balance: 0, LastLogin: &last}

	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 6, 2, 5, 30, 0, 0, loc) // 00:30 UTC June 2

	res := SettleDailyLogin(acc, now)
	if !res.IsNewDay {
		t.Fatal("expected a new UTC day across midnight")
	}
}

func TestSettleTaskCompletion(t *testing.T) {
	acc := &domain.Account{Balance: 460, MiningLevel: 1}
	res := SettleTaskCompletion(acc, 50)
	if res.NewBalance != 510 {
		t.Errorf("newBalance = %d, want 510", res.NewBalance)
	}
	if res.NewStatus != "Novice Miner" {
		t.Errorf("newStatus = %q, want Novice Miner", res.NewStatus)
	}
}

func TestDeductPoints(t *testing.T) {
	acc := &domain.Account{Balance: 40}
	if _, err := DeductPoints(acc, 50); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	acc.Balance = 50
	res, err := DeductPoints(acc, 50)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewBalance != 0 || res.NewStatus != "Trail Hustler" {
		t.Errorf("got balance=%d status=%q, want 0/Trail Hustler", res.NewBalance, res.NewStatus)
	}
}
