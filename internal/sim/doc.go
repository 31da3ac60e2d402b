// Package sim holds the two sources of nondeterminism used by every
// simulated component: a Clock for delays and a Rand for injected outcomes.
//
// Components receive both through their constructors. Production wiring uses
// RealClock and a seeded NewRand; tests use MockClock, whose Sleep returns at
// once after advancing virtual time, and NewSequenceRand, which replays a
// fixed list of draws.
package sim
