package email

// Driver names.
const (
	DriverDev      = "dev"
	DriverPostmark = "postmark"
)

// Config selects and configures the sender. Postmark tokens are only
// required by the postmark driver.
type Config struct {
	Driver               string `env:"EMAIL_DRIVER" envDefault:"dev"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@localhost"`
	ReplyTo              string `env:"EMAIL_REPLY_TO"`
	Tag                  string `env:"EMAIL_TAG" envDefault:"test-send"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"outbox"`
}
