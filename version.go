package sitepass

import _ "embed"

// Version is the release of sitepass, read from the VERSION file.
//
//go:embed VERSION
var Version string
