// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method plus call tracking,
// so tests can script failures without defining inline fakes:
//
//	gen := mocks.NewMockGeneratorWithImageFailureAt(2, errors.New("unavailable"))
//	task, _ := task.NewSlideGenerationTask(jobID, jobs, gen, logger)
//
// Unset function fields fall back to deterministic defaults.
package mocks
