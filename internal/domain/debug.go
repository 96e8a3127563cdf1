//go:build !debug

package domain

// VerboseDebug decides what a failed state invariant check does. The checks
// themselves run in every build; with this const false (production builds)
// a violation is only counted and the iteration carries on.
const VerboseDebug = false
