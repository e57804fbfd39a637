package s3wr

// Config defines the connection to AWS S3 or an S3 compatible endpoint.
type Config struct {
	// Region of the bucket.
	Region string `yaml:"region" validate:"required" default:"us-east-1"`

	// Bucket holds every managed file.
	Bucket string `yaml:"bucket" validate:"required"`

	// Endpoint overrides the AWS endpoint, e.g. for LocalStack. Empty uses AWS.
	Endpoint string `yaml:"endpoint"`

	// UsePathStyle addresses the bucket in the path instead of the host name.
	UsePathStyle bool `yaml:"use_path_style" default:"false"`

	// AccessKey and SecretKey pin static credentials. When empty the default
	// credential chain (environment, shared config, instance role) is used.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key" mask:"true"`
}
