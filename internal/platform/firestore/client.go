package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/weiwei-tsao/tgchecker/internal/platform/config"
)

const pingTimeout = 5 * time.Second

// Open connects to the history project. Credentials come from config (base64 or file);
// the returned string names the source that was used.
func Open(ctx context.Context, cfg config.Config) (*firestore.Client, string, error) {
	if !cfg.HistoryEnabled {
		return nil, "", errors.New("history is disabled")
	}
	creds, source, err := cfg.FirebaseCredentialsJSON()
	if err != nil {
		return nil, "", err
	}
	client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID,
		option.WithCredentialsJSON(creds),
		option.WithUserAgent("tgchecker-history"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("open firestore %s: %w", cfg.FirebaseProjectID, err)
	}
	return client, source, nil
}

// Ping reads at most one document from collection to confirm access.
func Ping(ctx context.Context, client *firestore.Client, collection string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	iter := client.Collection(collection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("ping %s: %w", collection, err)
	}
	return nil
}
