// Package cache persists lookup results keyed by lookup kind and word.
//
// Every outcome is stored, errors included, so a word that has a record
// is skipped on later runs until the record is refreshed. Three backends
// share the Store interface:
//
//   - FileStore writes one indented JSON file per word and kind, the
//     layout earlier tooling produced (data/dictionary, data/thesaurus)
//   - SQLiteStore keeps all records in one local database file
//   - PostgresStore shares a cache between machines
package cache
