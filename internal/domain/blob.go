package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// ArchiveReport summarises one archival run.
type ArchiveReport struct {
	DonationsArchived int64
	DonationsDeleted  int64
	Objects           []string
}

// Archiver moves aged ledger rows into blob storage and prunes them from the
// primary store.
type Archiver interface {
	ArchiveDonations(ctx context.Context, olderThanDays int) (ArchiveReport, error)
}
