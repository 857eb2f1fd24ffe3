// Package canon provides the canonical JSON form used for identities.
//
// Canonical JSON follows RFC 8785: object keys sorted by UTF-16 code units,
// no HTML escaping, NFC-normalized strings and ES6 number formatting. It is
// used to encode category sets inside canonical types, to fingerprint types
// and failure reports, and to persist offending values.
//
// canon imports nothing internal.
package canon
