package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"roadrescue/pkg/config"
	"roadrescue/pkg/logger"
)

// NewClient opens a Firestore client. Credentials come from the inline
// service account JSON when set, then from the service account file, and
// otherwise from Application Default Credentials.
func NewClient(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	if cfg.FirestoreProject == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore storage driver")
	}

	var opts []option.ClientOption
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)))
	case cfg.FirebaseServiceAccountPath != "":
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", cfg.FirebaseServiceAccountPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	default:
		logger.Info("Using application default credentials for Firestore")
	}

	client, err := firestore.NewClient(ctx, cfg.FirestoreProject, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}
