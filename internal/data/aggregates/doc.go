// Package aggregates implements the geo write boundaries on top of the table repos.
//
// Every write runs through executeWrite: one transaction, error mapping into
// domain aggregate codes, and operation hooks. City writes refresh the owning
// country's population inside that same transaction.
package aggregates
