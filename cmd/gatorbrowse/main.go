// Package main provides the gatorbrowse command line client.
//
// gatorbrowse drives the virtual browser from a shell: it loads pages
// through the full UF plugin set and signs in to GatorLink.
//
// Usage:
//
//	gatorbrowse fetch https://www.isis.ufl.edu/
//	GATOR_USERNAME=albert GATOR_PASSWORD=... gatorbrowse login --isis RSI-GRADES
//	gatorbrowse plugins
//
// Settings come from the environment, see internal/infrastructure/config.
package main

func main() {
	Execute()
}
