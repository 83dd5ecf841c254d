// Package constants holds identifiers shared between configuration and wiring.
package constants

// Event publisher providers.
const (
	PubSubProviderNoop    = "noop"
	PubSubProviderLocal   = "local"
	PubSubProviderGoogle  = "google"
	PubSubProviderKafka   = "kafka"
	PubSubProviderGoCloud = "gocloud"
)

// Activity stores.
const (
	ActivityStorePostgres = "postgres"
	ActivityStoreMongo    = "mongo"
)

// Mail providers.
const (
	MailProviderSMTP  = "smtp"
	MailProviderBrevo = "brevo"
	MailProviderLog   = "log"
)

// SMS providers.
const (
	SMSProviderTwilio = "twilio"
	SMSProviderLog    = "log"
)

// Rate limit stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)
