// Package archive reads and writes image archives.
//
// An archive is a single seekable file holding many independently
// deflate-compressed entries:
//
//	offset 0:  4 bytes  ASCII marker "ima2"
//	offset 4:  4 bytes  int32 little-endian, absolute offset of the file table
//	offset 8:  entry bodies, one complete deflate stream each
//	table:     one deflate stream holding, per entry, a 7-bit length-prefixed
//	           UTF-8 name, an int32 body offset and an int32 raw length,
//	           terminated by an empty name
//
// Archives are written once by [Create]: bodies first, then the table, and
// the header last, so an interrupted write never yields a file whose header
// points at a valid table. Readers decode the whole table into memory and
// then seek to each body on demand; see [Reader].
package archive
