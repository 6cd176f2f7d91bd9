// Package progression holds the XP and rank arithmetic shared by task rewards
// and member levelling. All functions are pure and total.
package progression

import "math"

// quantityScale divides the delivered quantity before the square root so that
// very large deliveries do not translate directly into large XP gains.
const quantityScale = 100.0

// CalculateXP returns the XP awarded for a task.
//
//	scaled = floor(tier * sqrt(quantity / 100))
//	base   = scaled + tip
//	result = verified ? base*2 : base
//
// Negative quantities are treated as zero.
func CalculateXP(tier, quantity, tip int, verified bool) int {
	if quantity < 0 {
		quantity = 0
	}
	quantityFactor := math.Sqrt(float64(quantity) / quantityScale)
	scaled := int(math.Floor(float64(tier) * quantityFactor))

	base := scaled + tip
	if verified {
		return base * 2
	}
	return base
}

// Rank returns the rank for a total XP: floor(sqrt(xp / 100)), 0 for negative XP.
func Rank(xp int) int {
	if xp < 0 {
		return 0
	}
	// floor(sqrt(xp/100)) == floor(sqrt(floor(xp/100))), and r*r <= q keeps the
	// products below xp, so nothing here can overflow.
	q := xp / 100
	r := int(math.Sqrt(float64(q)))
	for (r+1)*(r+1) <= q {
		r++
	}
	for r*r > q {
		r--
	}
	return r
}

// maxRank is the highest rank whose threshold fits in an int.
var maxRank = Rank(math.MaxInt)

// ThresholdForRank returns the XP needed to reach rank: 100 * rank², 0 for
// negative ranks. Ranks above the representable range saturate at math.MaxInt.
func ThresholdForRank(rank int) int {
	if rank < 0 {
		return 0
	}
	if rank > maxRank {
		return math.MaxInt
	}
	return 100 * rank * rank
}

// XPToNextRank returns how much more XP is needed to reach the next rank.
// At the top of the int range it is 0, since no higher rank is reachable.
func XPToNextRank(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return ThresholdForRank(Rank(xp)+1) - xp
}

// RanksCrossed returns the ranks newly reached when XP moves from oldXP to newXP,
// in ascending order. It is empty when no boundary is crossed.
func RanksCrossed(oldXP, newXP int) []int {
	oldRank, newRank := Rank(oldXP), Rank(newXP)
	if newRank <= oldRank {
		return nil
	}
	ranks := make([]int, 0, newRank-oldRank)
	for r := oldRank + 1; r <= newRank; r++ {
		ranks = append(ranks, r)
	}
	return ranks
}
