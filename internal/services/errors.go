package services

import "errors"

// Data service errors.
var (
	// ErrFileNotFound means the configured statistics file is absent.
	ErrFileNotFound = errors.New("statistics data file not found")
	// ErrColumnMissing means the major-category column is absent after
	// normalization and renaming.
	ErrColumnMissing = errors.New("required column missing after normalization")
	// ErrNoCategories means no selectable major category survived the
	// municipality exclusion filter.
	ErrNoCategories = errors.New("no selectable categories")
	// ErrCategoryNotFound means the requested major category has no rows.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrNoChartColumns means none of the metric columns needed for the
	// chart exist in the dataset.
	ErrNoChartColumns = errors.New("no chartable metric columns")

	// Export errors.
	ErrInvalidExportFormat = errors.New("invalid export format")
)
