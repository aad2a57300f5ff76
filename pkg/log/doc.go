// Package log is a thin wrapper around the standard library logger used by
// the indexing pipeline. It adds named per-component loggers (extract,
// segment, index, scout, ...), Warn and Debug levels on top of the default
// Info/Error pair, and the ability to enable debug output globally or for a
// single component.
//
// Extraction code produces a lot of recoverable per-file noise: pages that
// fail to parse, slides with no usable text, files that time out during a
// disk walk. All of that is logged at Debug level so a normal run stays
// quiet, and per-component toggles let one noisy stage be inspected without
// drowning in the others:
//
//	l := log.ForComponent("extract")
//	l.Warnf("pdf %s: falling back to whole-document pass: %v", path, err)
//	l.Debugf("slide %d rejected %d strings", idx, n)
//
//	log.SetGlobalDebug(true)      // everything
//	log.EnableDebugFor("scout")   // just the filesystem walker
//
// The package name intentionally collides with stdlib "log"; alias one of
// them when both are imported.
package log
