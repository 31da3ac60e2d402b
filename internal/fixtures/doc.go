// Package fixtures generates synthetic domain records and pre-built
// multi-actor scenarios for seeding a document store.
//
// Records have a fixed shape and randomized content. Every generated id
// comes from one counter shared by all generators of a Factory, so ids are
// unique and increasing until Reset.
package fixtures
