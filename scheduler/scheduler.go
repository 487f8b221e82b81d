package scheduler

// Package scheduler drives the signal lifecycle engine. It handles:
// - The recurring scan tick (fetch, score, classify, persist, notify)
// - The recurring evaluation tick (resolve open signals)
// - Non-overlap guarantees per job (a late successor tick is dropped)
// - One immediate scan on startup so the first output is not delayed
//
// Both jobs are implemented in jobs.go
