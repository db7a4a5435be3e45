// Package dataprocessing loads the small-business operating-status CSV
// published by the statistics office and turns it into a clean, typed table.
//
// The published file is messy in two independent ways: its character
// encoding varies between UTF-8 and the EUC-KR/CP949 family, and the real
// column header is sometimes preceded by up to two metadata rows. The
// Normalizer detects both by content sniffing, renames the columns to the
// canonical names the rest of the application relies on, and coerces the
// metric columns to numbers.
package dataprocessing
