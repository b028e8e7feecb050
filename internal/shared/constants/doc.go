// Package constants centralizes probe budgets and limits shared across the engine.
//
// Keeping the per-probe timeouts, body limits and upstream politeness defaults in
// one place prevents magic numbers from scattering across cmd/ and internal/.
// The values mirror what the public assessment APIs tolerate and can be
// referenced from multiple packages without introducing import cycles.
package constants
