//go:build !convexdebug

package hull

const debugChecks = false
