// Package retention removes old run records.
//
// A Pruner applies the retention configuration to a run store: records that
// started more than Days ago are deleted first, then the oldest records
// beyond MaxRecords. A negative Days keeps records forever and a zero
// MaxRecords means no count limit.
//
// Prune runs once, for the "runs prune" command and after every one-shot
// run. While watching, Start schedules Prune on the PruneSchedule cron
// expression until the context is cancelled.
package retention
