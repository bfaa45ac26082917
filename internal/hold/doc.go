// Package hold models hold notes and their nested sub-objects.
//
// A hold note decomposes into one head, zero or more interior ticks and a
// tail tick at the end time. Sub-objects are plain tagged values; the judging
// rules that dispatch on the tag live in the engine package.
//
// Live notes are kept in an Arena and addressed by Handle. Sub-objects refer
// back to their note by handle only, so recycling a note never touches
// anything outside its own slot.
package hold
