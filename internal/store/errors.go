package store

import "errors"

// ErrDuplicate indicates a unique constraint rejected the write (app name,
// domain name, plan name). Surfaced as a validation error at the boundary.
var ErrDuplicate = errors.New("store: duplicate value")

// ErrPlanInUse indicates a plan cannot be deleted while subscriptions
// still reference it.
var ErrPlanInUse = errors.New("store: plan is referenced by subscriptions")
