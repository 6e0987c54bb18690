package config

import (
	"fmt"
	"time"
)

const (
	defaultMinStakeAmount = 1000
	secondsPerDay         = 86400
)

// EscrowConfig holds the staking rules applied by the ledger and the
// forfeiture scheduler.
type EscrowConfig struct {
	// Minimum amount a participant has to deposit for a stake to be accepted.
	MinStakeAmount uint64 `mapstructure:"min-stake-amount"`
	// Length of a due-date day in seconds. Only shortened in test environments.
	SecondsPerDay int64 `mapstructure:"seconds-per-day"`
}

func (cfg *EscrowConfig) Validate() error {
	if cfg.MinStakeAmount == 0 {
		return fmt.Errorf("min stake amount must be greater than 0")
	}

	if cfg.SecondsPerDay <= 0 {
		return fmt.Errorf("seconds per day must be a positive integer")
	}

	return nil
}

// DueDateDelay converts a due date expressed in days into the timer delay.
func (cfg *EscrowConfig) DueDateDelay(days int64) time.Duration {
	return time.Duration(days*cfg.SecondsPerDay) * time.Second
}

func DefaultEscrowConfig() EscrowConfig {
	return EscrowConfig{
		MinStakeAmount: defaultMinStakeAmount,
		SecondsPerDay:  secondsPerDay,
	}
}
