// Package optimizer integrates the externally hosted advisory optimizer.
// Its suggestions are proposals, never commands: each one is re-validated
// against the same hard constraints the local planner enforces, and an
// unreachable or malformed optimizer degrades to the local plan.
package optimizer
