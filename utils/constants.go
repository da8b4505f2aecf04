// File: utils/constants.go
package utils

import "time"

// TxSessionPrefix is the prefix used for Redis booking transaction keys.
const TxSessionPrefix = "bookingTx:"

// SweepInterval is how often expired price locks are swept from memory.
const SweepInterval = 5 * time.Minute
