package cmd

import (
	"fmt"
	"time"
)

const (
	DeliveryLog = "log"
	DeliverySNS = "sns"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotifyDelivery string
	AWSRegion      string
	SNSTopicARN    string

	StoreName           string
	WhatsAppCountryCode string

	DispatchSchedule    string
	JanitorSchedule     string
	Retention           time.Duration
	BatchSize           int
	MaxAttempts         int
	IntentTimeout       time.Duration
	DispatchConcurrency int
	DrainOnWrite        bool

	JaegerEndpoint string
}

// DSN builds the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}

// Validate rejects combinations the composition root cannot wire.
func (c Config) Validate() error {
	switch c.NotifyDelivery {
	case DeliveryLog:
	case DeliverySNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("SNS_TOPIC_ARN is required when NOTIFY_DELIVERY=%s", DeliverySNS)
		}
	default:
		return fmt.Errorf("NOTIFY_DELIVERY must be %q or %q, got %q", DeliveryLog, DeliverySNS, c.NotifyDelivery)
	}
	return nil
}
