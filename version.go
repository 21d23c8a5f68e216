package waypoint

// Version is the release of the module, set at build time with
// -ldflags "-X github.com/aretw0/waypoint.Version=...".
var Version = "0.1.0-dev"
