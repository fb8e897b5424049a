// Package iox holds the close helpers used on objext's cleanup paths:
// input readers, sinks abandoned during pipeline setup, webhook
// response bodies and the job logger's final Sync.
package iox

import "io"

// DiscardClose closes c and drops the error. For readers that were
// only read from, such as an event store input or an HTTP body:
//
//	defer iox.DiscardClose(rc)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a func that closes c, for t.Cleanup on sinks and
// readers opened by a test:
//
//	t.Cleanup(iox.CloseFunc(sink))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and drops the error. The logger's Sync fails on
// terminals and pipes, so it is deferred this way:
//
//	defer iox.DiscardErr(logger.Sync)
func DiscardErr(fn func() error) { _ = fn() }
