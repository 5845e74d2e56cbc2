// Package plan implements the core assignment logic for field-service
// dispatch: matching a queue of pending tasks against a pool of technicians.
//
// Key components:
//   - AvailabilityFilter: hard eligibility rules (availability, capacity,
//     skills, blocked time windows) with per-rule reason codes.
//   - CandidateScorer: fitness score for eligible pairs, combining rating,
//     distance and current load with fixed weights.
//   - GreedyPlanner: deterministic single-pass assignment with provisional
//     load tracking and first-class "no technician found" outcomes.
//
// All components are pure over the snapshot they receive; state is owned and
// mutated exclusively by the store package.
package plan
