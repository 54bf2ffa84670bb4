// Package uniuri generates cryptographically secure random strings
// used as announcement identifiers.
package uniuri
