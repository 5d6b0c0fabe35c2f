package version

// Version is the current release of the recruitedge binary.
const Version = "0.3.0"
