// Package timeresolver turns the date and time material found in listing
// documents into naive, venue-local timestamps.
//
// A time entry is resolved with this precedence:
//
//  1. an exact timestamp encoded in the booking URL query (e.g.
//     ShowDate=11-Dec-2025 8:30:00 PM),
//  2. a bare "H:MM" / "HH:MM" string, optionally suffixed with AM or PM,
//     combined with the date of the surrounding listing block.
//
// When neither can be parsed the entry is reported as unresolvable and the
// caller skips it. Date labels that cannot be normalized fall back to the run
// date. No timezone conversion is ever applied: every returned time.Time
// carries the wall clock in UTC.
package timeresolver
