package gsheets

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Revision identifies the latest revision of a spreadsheet.
type Revision struct {
	ID       string
	Modified time.Time
}

// Revision walks the Drive revision history of a spreadsheet and returns the most
// recently modified revision.
func (b *Backend) Revision(ctx context.Context, spreadsheet string) (Revision, error) {
	page := ""
	latest := Revision{}

	for {
		call := b.drive.Revisions.List(spreadsheet).Fields("nextPageToken", "revisions(id,modifiedTime)").Context(ctx)
		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Do()
		if err != nil {
			return Revision{}, errors.Wrap(err, "failed to list revisions")
		}

		for _, revision := range revisions.Revisions {
			modified, err := time.Parse(time.RFC3339Nano, revision.ModifiedTime)
			if err != nil {
				return Revision{}, errors.Wrapf(err, "invalid revision timestamp '%v'", revision.ModifiedTime)
			}

			if latest.Modified.Before(modified) {
				latest = Revision{ID: revision.Id, Modified: modified}
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.Modified.IsZero() {
		return Revision{}, errors.Newf("unable to identify latest revision for spreadsheet %v", spreadsheet)
	}

	return latest, nil
}
