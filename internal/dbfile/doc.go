// Package dbfile inspects and maintains the SQLite database files the
// DynamoDB Local engine persists tables into.
//
// The engine writes one SQLite file per credential pair, or a single
// shared-local-instance.db in shared mode. Inside each file every DynamoDB
// table is a SQLite table named after it, next to a fixed set of engine
// bookkeeping tables. All functions here operate on quiesced files; the
// engine must not be running against them.
package dbfile
