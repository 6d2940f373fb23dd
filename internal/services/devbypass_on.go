//go:build devauth

package services

// Built with -tags devauth: requests without credentials may resolve to the dev user
// when debug is on.
const devBypassCompiled = true
