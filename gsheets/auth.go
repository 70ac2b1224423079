package gsheets

import (
	"context"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

var ErrAuth = errors.New("google authentication failed")

// Authorize exchanges the service account credentials for a single access token and
// returns a client that uses that token. The token is not refreshed.
func Authorize(ctx context.Context, credentials string) (*http.Client, error) {
	if credentials == "" {
		return nil, errors.Wrap(ErrAuth, "missing service account credentials")
	}

	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unable to read credentials"), ErrAuth)
	}

	return AuthorizeJSON(ctx, b)
}

func AuthorizeJSON(ctx context.Context, credentials []byte) (*http.Client, error) {
	config, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope, drive.DriveFileScope)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid service account credentials"), ErrAuth)
	}

	token, err := config.TokenSource(ctx).Token()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unable to retrieve access token"), ErrAuth)
	}

	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), nil
}
