// Package jent wraps the jitterentropy library, a CPU timing jitter based
// true random number generator with built-in continuous health tests.
//
// The library keeps process-wide state: it must be initialized exactly once
// before the first collector is allocated and provides no teardown call.
// [New] coordinates that initialization behind a shared registry, so any
// number of [Source] instances can be created and used concurrently; each
// owns its own collector handle and must be released with [Source.Close].
//
// Entropy production can fail at any time when one of the library's health
// tests (repetition count, adaptive proportion, lag prediction) trips. The
// resulting [Error] distinguishes transient failures, which justify
// discarding the instance and creating a fresh one, from permanent failures
// after which the generator must not be trusted again.
package jent
