// Package klproj builds KodeLife project files (.klproj) from composite
// shader files and YAML manifests.
package klproj

// Version is the current klproj release version.
const Version = "0.3.0"
