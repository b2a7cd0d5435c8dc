// Package profile converts raw Facebook profile data into local user
// records.
//
// The provider returns profiles as loosely typed JSON objects whose shape
// drifts over time, so the package keeps the raw data as an open map
// (Raw) and derives a typed UserRecord from it. Conversion covers the
// awkward parts of the mapping: username selection with a uniqueness
// registry, the provider's MM/DD/YYYY birthday format, over-long emails
// that do not fit common column widths, and website extraction from
// free-form text.
//
// Profiles that fail conversion are handed to an optional Reporter before
// the error is returned, so broken payloads can be inspected later.
package profile
