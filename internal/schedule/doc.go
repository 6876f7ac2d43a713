// Package schedule runs the scrape cycle loop.
//
// A Scheduler holds an ordered list of entries, each binding a collector to
// an explicit cadence descriptor (run every Nth cycle, optional phase) and an
// optional runtime guard. Per tick it re-authenticates if the session has
// expired (sleeping a fixed backoff on failure, without advancing the cycle
// counter), then runs every due collector in order. A collector's failure —
// error or panic — is counted and logged under the collector's name and never
// stops its peers or the cycle. Cycle duration, last completion timestamp,
// and the cycle number are published after each cycle, followed by the
// inter-cycle sleep.
package schedule
