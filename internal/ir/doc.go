// Package ir provides the typed records of a compiled scene table.
//
// This package contains type definitions and identity helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - durations are strings, money is int cents
//   - One ObjectLabel record per color slot; alignment is explicit, never positional
//   - The change target is a boolean field, never a label suffix
//   - All JSON tags use snake_case
package ir
