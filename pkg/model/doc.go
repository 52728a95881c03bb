// Package model drives a rule set through its lifecycle.
//
// A model is validated, initialized, executed and finalized in that order.
// Run stops at the first failing phase and leaves the model in a terminal
// status: validation failed, failed or finalized.
package model
