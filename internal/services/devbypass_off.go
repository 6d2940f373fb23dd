//go:build !devauth

package services

const devBypassCompiled = false
