// Package app contains the core application logic. It defines the App
// struct, its configuration and the commands it runs (setup, show, list and
// watch), decoupled from the CLI that fills the configuration in.
package app
