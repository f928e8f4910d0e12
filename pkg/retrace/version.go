// Package retrace exposes project-level metadata for the retrace engine.
package retrace

// Version is the current retrace release.
const Version = "0.1.0"
