// internal/workers/underwriting/notify-decision/config.go
package notifydecision

import (
	"time"

	"underwriting-workers/internal/common/config"
)

type Config struct {
	SMSEnabled         bool
	SenderID           string
	AWSRegion          string
	DefaultCountryCode string
	Timeout            time.Duration
}

func LoadConfig(sms config.SMSConfig, wc config.WorkerConfig) *Config {
	c := &Config{
		SMSEnabled:         sms.Enabled,
		SenderID:           sms.SenderID,
		AWSRegion:          sms.Region,
		DefaultCountryCode: "+91",
		Timeout:            15 * time.Second,
	}
	if wc.Timeout > 0 {
		c.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return c
}
