// Package fetcher downloads the spreadsheet export over HTTP or reads it
// from a local file.
package fetcher

import "context"

// Source yields the raw delimited text of one export snapshot.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}
