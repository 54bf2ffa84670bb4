// Package main provides the entry point for the AI Scholar admin
// service. It runs a web server using the Fiber framework that persists
// the user settings record, the notification preferences and the
// automated workflow collection, validates every mutation before it is
// committed, and retries failed writes with exponential backoff. The
// application uses gorm for data persistence and supports a file-backed
// blob store as an alternative settings backend.
package main
