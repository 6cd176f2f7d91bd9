package progression

var rankRoles = map[int]string{
	1: "Initiate",
	2: "Drudge",
	3: "Binder",
	4: "Splicer",
	5: "Prospect",
	6: "Forgebearer",
	7: "Vanturian",
}

// RoleForRank returns the guild role granted at rank, or "" if none.
func RoleForRank(rank int) string {
	return rankRoles[rank]
}

// RewardForRank describes what a member unlocks at rank.
func RewardForRank(rank int) string {
	switch rank {
	case 1:
		return `Access to the "Level 1" role`
	case 2:
		return `Access to the "Level 2" role + a special color`
	case 3:
		return `Access to the "Level 3" role + a custom nickname badge`
	case 4:
		return `Access to the "Level 4" role + 5 free server boosts`
	default:
		return "No reward at this rank"
	}
}
