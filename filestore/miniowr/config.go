package miniowr

// Config defines the connection to a MinIO (or any S3 compatible) server.
type Config struct {
	// Endpoint is the server address without scheme, e.g. "localhost:9000".
	Endpoint string `yaml:"endpoint" validate:"required"`

	// AccessKey is the access key for authentication.
	AccessKey string `yaml:"access_key" validate:"required"`

	// SecretKey is the secret key for authentication.
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`

	// Bucket holds every managed file.
	Bucket string `yaml:"bucket" validate:"required"`

	// UseSSL enables HTTPS.
	UseSSL bool `yaml:"use_ssl" default:"false"`

	// Region is sent with requests and used for presigning. Empty lets MinIO discover it.
	Region string `yaml:"region"`

	// CreateBucket creates Bucket on startup when it does not exist yet.
	CreateBucket bool `yaml:"create_bucket" default:"true"`
}
