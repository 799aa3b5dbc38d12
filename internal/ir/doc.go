// Package ir provides the canonical value model used for content-addressed
// identities of automata, task scripts and verdicts.
//
// Key design constraints:
//   - NO float types anywhere; editor geometry never reaches a hash
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are hashed byte-exact, since labels are matched byte-exact
//   - Every hash is SHA-256 over a versioned domain prefix and the data
package ir
