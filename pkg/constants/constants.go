// Package constants holds process-wide constants shared across packages.
package constants

const (
	// ConfigName and ConfigFormat identify the config file viper looks for.
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// ServiceName is the default service identity used in logs and telemetry
	// when config does not override it.
	ServiceName = "cliniva_backend"

	// SubjectPrefix namespaces every NATS subject published by this service.
	SubjectPrefix = "cliniva"

	// PhoneRegion is the default region used when parsing mobile numbers
	// that are not in international format.
	PhoneRegion = "IR"
)
