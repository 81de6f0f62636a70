// Package router is a guarded front-end for the command engine. One call
// stages caller-approved token moves, runs the caller's script, re-checks the
// caller's postconditions and asserts that the router's own native balance is
// unchanged. The whole call commits or rolls back as a unit and is protected
// by a single-entry lock, so scripts cannot re-enter the router.
//
// Caveat: token allowances granted to the router are spendable by ANY caller
// able to supply matching approvals and commands. The router has no allowance
// management of its own; allowance changes are themselves expressible as
// engine commands. Integrators should grant narrow allowances or put an
// authorization layer in front of the router.
package router
