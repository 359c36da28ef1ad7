// Package meta provides the identity and audit fields shared by stored
// records: IDs, creation/update/deletion stamps, timezone and status.
//
// Audit stamps are epoch milliseconds. Time and ID sources are injected
// (Clock, IDGenerator) so tests get byte-identical records.
package meta
