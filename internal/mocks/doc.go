// Package mocks provides test doubles for the store interfaces and services.
//
// Store mocks are built on testify/mock. Their WithTx methods return the
// mock itself so expectations set before a transaction still apply inside it.
// Service mocks use function fields with call tracking for handler tests.
package mocks
