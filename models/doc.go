// Package models holds the plain data types shared by the vault, the
// zero-knowledge sync layer, the storage layer and the relay.
//
// Types in this package carry no behaviour beyond small helpers such as
// String methods; all cryptographic and state-machine logic lives in the
// internal packages.
package models
