// Package statline is a client-side metrics emission library. It records counters, gauges,
// histograms, meters, and timers, and ships each event as a line-oriented text datagram to a
// remote statsd-compatible aggregator.
//
// Emission is strictly best-effort: transmission is fire-and-forget, socket errors are
// swallowed, and nothing in this package ever blocks or perturbs application control flow on
// behalf of a metric. The underlying datagram socket is either supplied by the caller or
// created lazily on first send and recycled in the background once idle.
package statline
