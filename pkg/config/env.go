package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvRabbitMQURL = "RABBITMQ_URL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_HMAC_SECRET"
	EnvJWTLeeway = "JWT_LEEWAY"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimezone = "APP_TIMEZONE"

	EnvBookingSerializeWrites = "BOOKING_SERIALIZE_WRITES"
	EnvBookingLockBackend     = "BOOKING_LOCK_BACKEND"
	EnvBookingLockTTL         = "BOOKING_LOCK_TTL"
	EnvAvailabilityWindowDays = "AVAILABILITY_WINDOW_DAYS"
	EnvBookingMaxNights       = "BOOKING_MAX_NIGHTS"

	EnvListingsServiceURL = "LISTINGS_SERVICE_URL"
	EnvPaymentReceiptKey  = "PAYMENT_RECEIPT_KEY"

	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID       = "NOTIFIER_GROUP_ID"

	EnvReminderLead         = "REMINDER_LEAD"
	EnvReminderPollInterval = "REMINDER_POLL_INTERVAL"
)
