// Package version holds the application version string.
package version

// Version is reported by /api/version and the root status endpoint.
// Clients use it to detect a running instance, so keep it semver-shaped.
const Version = "1.0.0"
