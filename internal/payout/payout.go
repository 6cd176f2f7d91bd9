// Package payout splits a community task's currency pot among its contributors.
package payout

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

var (
	ErrNegativePot          = errors.New("pot size must not be negative")
	ErrInvalidContribution  = errors.New("contribution amounts must be positive")
	ErrContributionOverflow = errors.New("total contribution overflows")
)

// Share is the payout of one contributor.
type Share struct {
	UserID      int64
	Contributed int64
	Amount      int64
}

// Distribute splits pot proportionally to contributions.
//
// Every share is pot*amount/total truncated toward zero; the leftover units go
// to the largest contributor, ties broken by the lowest user id. The returned
// amounts sum to pot whenever pot > 0 and at least one contribution exists.
// The result is empty when pot is zero or there are no contributions.
func Distribute(pot int64, contributions map[int64]int64) (map[int64]int64, error) {
	if pot < 0 {
		return nil, ErrNegativePot
	}

	var total uint64
	for userID, amount := range contributions {
		if amount <= 0 {
			return nil, fmt.Errorf("%w: user %d contributed %d", ErrInvalidContribution, userID, amount)
		}
		sum, carry := bits.Add64(total, uint64(amount), 0)
		if carry != 0 || sum > uint64(1<<63-1) {
			return nil, ErrContributionOverflow
		}
		total = sum
	}

	shares := make(map[int64]int64, len(contributions))
	if total == 0 || pot == 0 {
		return shares, nil
	}

	var allocated int64
	for userID, amount := range contributions {
		share := mulDiv(uint64(pot), uint64(amount), total)
		shares[userID] = share
		allocated += share
	}

	if remainder := pot - allocated; remainder > 0 {
		shares[topContributor(contributions)] += remainder
	}

	return shares, nil
}

// Ordered returns shares sorted by contributed amount descending, then user id.
func Ordered(shares, contributions map[int64]int64) []Share {
	out := make([]Share, 0, len(contributions))
	for userID, amount := range contributions {
		out = append(out, Share{UserID: userID, Contributed: amount, Amount: shares[userID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Contributed != out[j].Contributed {
			return out[i].Contributed > out[j].Contributed
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// mulDiv computes floor(a*b/c) with a 128-bit intermediate product.
// The caller guarantees b <= c, so the quotient never exceeds a.
func mulDiv(a, b, c uint64) int64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return int64(q)
}

// topContributor returns the user with the largest amount; ties go to the lowest id.
func topContributor(contributions map[int64]int64) int64 {
	var (
		top    int64
		best   int64 = -1
		picked bool
	)
	for userID, amount := range contributions {
		if !picked || amount > best || (amount == best && userID < top) {
			top, best, picked = userID, amount, true
		}
	}
	return top
}
