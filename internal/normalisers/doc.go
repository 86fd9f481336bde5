// Package normalisers provides implementations of the Normaliser interface
// for action definition formats. Each normaliser knows how to extract
// metadata from candidates of specific origins.
//
// Normalisers are registered with the Registry at startup.
package normalisers
