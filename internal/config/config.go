package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultSweepInterval is how often the scheduler spawns and expires tasks.
	DefaultSweepInterval = time.Minute

	// DefaultSystemActorID is the creator recorded on scheduler-spawned tasks.
	DefaultSystemActorID int64 = 0

	// DefaultMaxConns is the default database pool size.
	DefaultMaxConns = 10

	// DefaultLeaderboardSize is how many members the leaderboard returns by default.
	DefaultLeaderboardSize = 10
)
