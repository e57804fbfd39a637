package meta

import "sync"

//nolint:gochecknoglobals // set once at startup and read by tracing and middleware
var (
	serviceName    string
	serviceVersion string
	once           sync.Once
)

// SetServiceInfo records the service name and version. Only the first call has an effect.
func SetServiceInfo(name, version string) {
	once.Do(func() {
		serviceName = name
		serviceVersion = version
	})
}

// GetServiceName returns the name given to SetServiceInfo.
func GetServiceName() string {
	return serviceName
}

// GetServiceVersion returns the version given to SetServiceInfo.
func GetServiceVersion() string {
	return serviceVersion
}
