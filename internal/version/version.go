package version

// Name identifies the service in telemetry and logs.
const Name = "sentrylogd"

// Version is the release version, overridable at build time via ldflags.
var Version = "0.1.0"
