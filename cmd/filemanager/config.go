package main

import (
	"github.com/rise-and-shine/filemanager/conflict/redisindex"
	"github.com/rise-and-shine/filemanager/filestore/memstore"
	"github.com/rise-and-shine/filemanager/filestore/miniowr"
	"github.com/rise-and-shine/filemanager/filestore/s3wr"
	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/tracing"
	"github.com/rise-and-shine/filemanager/rediswr"
)

// Storage backends.
const (
	backendMinio  = "minio"
	backendS3     = "s3"
	backendMemory = "memory"
)

// Config is the root configuration loaded from ./config/${ENVIRONMENT}.yaml.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Logger    logger.Config   `yaml:"logger"`
	HTTP      server.Config   `yaml:"http"`
	Tracing   tracing.Config  `yaml:"tracing"`
	Storage   StorageConfig   `yaml:"storage"`
	NameIndex NameIndexConfig `yaml:"name_index"`
}

type ServiceConfig struct {
	Name    string `yaml:"name" default:"filemanager"`
	Version string `yaml:"version" default:"dev"`
}

// StorageConfig selects the object store. Only the section of the chosen backend is read.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=minio s3 memory" default:"minio"`

	Minio  *miniowr.Config `yaml:"minio" validate:"required_if=Backend minio"`
	S3     *s3wr.Config    `yaml:"s3" validate:"required_if=Backend s3"`
	Memory memstore.Config `yaml:"memory"`
}

// NameIndexConfig enables the Redis backed original name index used to skip full scans
// during conflict detection.
type NameIndexConfig struct {
	Enabled bool `yaml:"enabled" default:"false"`

	Index redisindex.Config `yaml:",inline"`

	Redis *rediswr.Config `yaml:"redis" validate:"required_if=Enabled true"`
}
