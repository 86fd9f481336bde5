// Package services implements the driving port interfaces.
// Services contain the core discovery logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is strictly sequential: one search page, one repository
// and one candidate at a time. Every wait goes through an injected
// SleepFunc so that tests run without real delays.
package services
