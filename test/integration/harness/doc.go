// Package harness provides utilities for end-to-end testing of the jj CLI.
// It spawns the binary in an isolated sandbox, captures its output for
// snapshot comparison, and builds repository fixtures through jj's own
// commands.
//
// Each TestEnvironment owns a private sandbox root. Child processes start
// from an empty environment (only PATH is passed through) and get:
//   - HOME: <root>/home
//   - JJ_CONFIG: <root>/config, filled by AddConfig
//   - JJ_USER, JJ_EMAIL, JJ_OP_HOSTNAME, JJ_OP_USERNAME: fixed identities
//   - JJ_TZ_OFFSET_MINS, COLUMNS: fixed formatting inputs
//   - JJ_RANDOMNESS_SEED, JJ_TIMESTAMP, JJ_OP_TIMESTAMP: derived from the
//     environment's command counter so ids and dates are reproducible
//   - JJ_INTERACTIVE: set by ForceInteractive to bypass TTY detection
//
// The parent test process is never modified: no os.Setenv, no os.Chdir.
//
// Harness settings come from JJTEST_* environment variables, see
// internal/config.
package harness
