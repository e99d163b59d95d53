package inventory

import "errors"

// ErrValidation marks malformed input: non-positive counts, empty names.
// These are programming or protocol errors, distinct from game-state
// refusals such as insufficient funds, which are reported as statuses.
var ErrValidation = errors.New("invalid argument")
