package config

import (
	"fmt"
	"time"
)

type QueueConfig struct {
	// Enabled routes expired-assignment events through RabbitMQ. When false
	// the forfeiture callback is processed in-process.
	Enabled                bool          `mapstructure:"enabled"`
	QueueUser              string        `mapstructure:"queue_user"`
	QueuePassword          string        `mapstructure:"queue_password"`
	Url                    string        `mapstructure:"url"`
	QueueProcessingTimeout time.Duration `mapstructure:"processing_timeout"`
	MsgMaxRetryAttempts    int32         `mapstructure:"msg_max_retry_attempts"`
	ReQueueDelayTime       time.Duration `mapstructure:"requeue_delay_time"`
}

func (cfg *QueueConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.QueueUser == "" {
		return fmt.Errorf("missing queue user")
	}

	if cfg.QueuePassword == "" {
		return fmt.Errorf("missing queue password")
	}

	if cfg.Url == "" {
		return fmt.Errorf("missing queue url")
	}

	if cfg.QueueProcessingTimeout <= 0 {
		return fmt.Errorf("invalid queue processing timeout")
	}

	if cfg.MsgMaxRetryAttempts <= 0 {
		return fmt.Errorf("invalid queue message max retry attempts")
	}

	if cfg.ReQueueDelayTime < 0 {
		return fmt.Errorf("requeue delay time cannot be negative")
	}

	return nil
}
