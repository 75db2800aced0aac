//go:build convexdebug

package hull

// debugChecks enables full neighbour validation after every topology change.
const debugChecks = true
