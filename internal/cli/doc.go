// Package cli provides command-line interface setup and configuration
// for the wordhoard application. It handles flag parsing, command
// creation, and configuration management using cobra and viper, and
// turns the merged settings into the configs of the other packages.
package cli
