package tracing

import "time"

const (
	reconnectionPeriod = 30 * time.Second
	exportTimeout      = 30 * time.Second
	maxQueueSize       = 10000
	batchTimeout       = 5 * time.Second
	maxExportBatchSize = 1024
)

// Config holds the configuration for the tracing system.
type Config struct {
	// Disable, if true, completely disables tracing. No spans will be collected or exported.
	Disable bool `yaml:"disable" default:"false"`

	// SampleRate is the fraction of traces kept, between 0.0 and 1.0.
	SampleRate float64 `yaml:"sample_rate" default:"1" validate:"gte=0,lte=1"`

	// ExporterHost is the hostname of the OTLP gRPC collector.
	ExporterHost string `yaml:"exporter_host" validate:"required_unless=Disable true"`

	// ExporterPort is the port of the OTLP gRPC collector.
	ExporterPort int `yaml:"exporter_port" default:"4317"`

	// Tags are added as resource attributes to all spans.
	Tags map[string]string `yaml:"tags"`
}
