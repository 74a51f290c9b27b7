package ports

import "errors"

// Sentinel errors matching §7's PluginInstantiationFailure and
// DeviceUnavailable error kinds.
var (
	ErrPluginInstantiation = errors.New("ports: plugin instantiation failed")
	ErrDeviceUnavailable   = errors.New("ports: device unavailable")
)
