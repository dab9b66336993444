// Package importers turns an uploaded recommendations table into stored recommendations.
//
// # Architecture
//
// The ingestion flow for one batch:
//
//	CSV → LoadTable → Table.Rows → Pipeline.Run → (per row)
//	    Validator → DuplicateChecker → ImageUploader → RecommendationWriter
//
// Every row ends in exactly one Outcome. Invalid rows, duplicates and rows whose
// picture cannot be resolved or uploaded are skipped with a human-readable message;
// the batch always continues. Only an unreachable datastore stops a run.
//
// # Progress
//
// Pipeline.Run calls a Reporter after each row, so callers decide how progress is
// shown (streamed HTML, server-sent events, terminal output):
//
//	pipeline := importers.NewPipeline(handle, handle, processor)
//	summary, err := pipeline.Run(ctx, table, extraction.Files,
//	    importers.ReporterFunc(func(r importers.RowResult, done, total int) {
//	        fmt.Printf("[%d/%d] %s\n", done, total, r.Message)
//	    }))
//
// # Matching quirks
//
// Duplicate detection and image lookup both use case-insensitive substring matching.
// "Cafe" is a duplicate of a stored "Sunset Cafe". A picture reference first matches
// any file name containing it; when none does, its name without extension is tried,
// so "sunset.jpg" resolves to "sunset_resized_final.jpg".
package importers
