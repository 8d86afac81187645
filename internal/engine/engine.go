// Package engine holds the account progression rules: tier classification,
// claim cooldown, upgrades, the daily login bonus and task point settlement.
// Everything here is pure computation over an Account snapshot; persistence
// is the service layer's job.
package engine

import (
	"errors"
	"fmt"
	"time"

	"trail_miniapp/internal/domain"
)

var (
	ErrClaimTooEarly       = errors.New("claim too early")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

const (
	// ClaimCooldown is the minimum time between mining claims.
	ClaimCooldown = 7 * time.Hour

	// ClaimRewardPerLevel is the per-claim payout multiplier.
	ClaimRewardPerLevel = 10

	// UpgradeCostPerLevel is the upgrade cost multiplier.
	UpgradeCostPerLevel = 100

	// DailyLoginBonus is granted once per UTC calendar day.
	DailyLoginBonus = 100

	// ReferralReward is the fixed grant to a referrer per referred account.
	ReferralReward = 100

	// MilestoneLevelStep: every level divisible by this emits an achievement.
	MilestoneLevelStep = 5
)

// DefaultTier is the status of a fresh account.
const DefaultTier = "Trail Hustler"

type tierBin struct {
	min   int64
	label string
}

// Ordered highest threshold first; Classify returns the first bin that fits.
var tiers = []tierBin{
	{5000, "Galactic Miner"},
	{4000, "Mythical Miner"},
	{3500, "Legendary Miner"},
	{3000, "Grandmaster Miner"},
	{2500, "Master Miner"},
	{2000, "Expert Miner"},
	{1500, "Skilled Miner"},
	{1000, "Apprentice Miner"},
	{500, "Novice Miner"},
}

// Classify maps a balance to its tier label. Total and deterministic; every
// balance mutation must persist the re-classified status next to the balance.
func Classify(balance int64) string {
	for _, t := range tiers {
		if balance >= t.min {
			return t.label
		}
	}
	return DefaultTier
}

// ClaimReward returns the payout for a claim at the given mining level.
func ClaimReward(miningLevel int) int64 {
	return int64(miningLevel) * ClaimRewardPerLevel
}

// UpgradeCost returns the price of moving from miningLevel to the next level.
func UpgradeCost(miningLevel int) int64 {
	return int64(miningLevel) * UpgradeCostPerLevel
}

// IsClaimable reports whether a claim is allowed at now. A nil lastClaimed
// means the account has never claimed.
func IsClaimable(lastClaimed *time.Time, now time.Time) bool {
	if lastClaimed == nil {
		return true
	}
	return now.Sub(*lastClaimed) >= ClaimCooldown
}

// ClaimableIn returns how long until the next claim, zero when claimable.
// Presentation-only; eligibility is always IsClaimable.
func ClaimableIn(lastClaimed *time.Time, now time.Time) time.Duration {
	if lastClaimed == nil {
		return 0
	}
	remaining := lastClaimed.Add(ClaimCooldown).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClaimResult is the outcome of a successful mining claim.
type ClaimResult struct {
	Reward        int64
	NewBalance    int64
	NewStatus     string
	LastClaimed   time.Time
	NextClaimTime time.Time
}

// SettleClaim computes a mining claim for the account at now.
// Fails with ErrClaimTooEarly inside the cooldown window.
func SettleClaim(acc *domain.Account, now time.Time) (*ClaimResult, error) {
	if !IsClaimable(acc.LastClaimed, now) {
		return nil, ErrClaimTooEarly
	}

	reward := ClaimReward(acc.MiningLevel)
	newBalance := acc.Balance + reward

	return &ClaimResult{
		Reward:        reward,
		NewBalance:    newBalance,
		NewStatus:     Classify(newBalance),
		LastClaimed:   now,
		NextClaimTime: now.Add(ClaimCooldown),
	}, nil
}

// UpgradeResult is the outcome of a successful mining upgrade.
type UpgradeResult struct {
	Cost           int64
	NewBalance     int64
	NewMiningLevel int
	NewStatus      string
	// Milestone is non-empty when the new level earns an achievement.
	Milestone string
}

// SettleUpgrade computes an upgrade to the next mining level.
// Fails with ErrInsufficientBalance when the account cannot afford it.
func SettleUpgrade(acc *domain.Account) (*UpgradeResult, error) {
	cost := UpgradeCost(acc.MiningLevel)
	if acc.Balance < cost {
		return nil, ErrInsufficientBalance
	}

	newBalance := acc.Balance - cost
	newLevel := acc.MiningLevel + 1

	res := &UpgradeResult{
		Cost:           cost,
		NewBalance:     newBalance,
		NewMiningLevel: newLevel,
		NewStatus:      Classify(newBalance),
	}
	if newLevel%MilestoneLevelStep == 0 {
		res.Milestone = fmt.Sprintf("Reached Mining Level %d", newLevel)
	}
	return res, nil
}

// DailyLoginResult is the outcome of a daily login check.
type DailyLoginResult struct {
	NewBalance int64
	NewStatus  string
	IsNewDay   bool
	LastLogin  time.Time
}

// SettleDailyLogin grants the login bonus when now falls on a different UTC
// calendar day than the last login. A missing last login counts as a new day.
func SettleDailyLogin(acc *domain.Account, now time.Time) *DailyLoginResult {
	if acc.LastLogin != nil && sameDayUTC(*acc.LastLogin, now) {
		return &DailyLoginResult{
			NewBalance: acc.Balance,
			NewStatus:  Classify(acc.Balance),
			IsNewDay:   false,
			LastLogin:  *acc.LastLogin,
		}
	}

	newBalance := acc.Balance + DailyLoginBonus
	return &DailyLoginResult{
		NewBalance: newBalance,
		NewStatus:  Classify(newBalance),
		IsNewDay:   true,
		LastLogin:  now,
	}
}

func sameDayUTC(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// TaskResult is the outcome of crediting or deducting task points.
type TaskResult struct {
	NewBalance int64
	NewStatus  string
}

// SettleTaskCompletion credits task points to the account. Duplicate
// completion is rejected at the persistence layer, not here.
func SettleTaskCompletion(acc *domain.Account, points int64) *TaskResult {
	newBalance := acc.Balance + points
	return &TaskResult{NewBalance: newBalance, NewStatus: Classify(newBalance)}
}

// DeductPoints subtracts task points from the account (the user-declined
// path). Fails with ErrInsufficientBalance when the balance would go negative.
func DeductPoints(acc *domain.Account, points int64) (*TaskResult, error) {
	if acc.Balance < points {
		return nil, ErrInsufficientBalance
	}
	newBalance := acc.Balance - points
	return &TaskResult{NewBalance: newBalance, NewStatus: Classify(newBalance)}, nil
}
