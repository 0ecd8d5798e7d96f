package file

// Config selects and configures the storage backend.
type Config struct {
	Driver  string `env:"STORAGE_DRIVER" envDefault:"local"` // local or s3
	BaseDir string `env:"STORAGE_DIR" envDefault:"./data"`
	BaseURL string `env:"STORAGE_BASE_URL" envDefault:"/files/"`
}

// S3Config configures S3Storage.
type S3Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`                            // S3-compatible services
	BaseURL        string `env:"S3_BASE_URL"`                            // public URL base
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // MinIO and friends
}
