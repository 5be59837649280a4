package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/config"
)

// InitFirebase initializes the Firebase app. Without a service account path
// the application default credentials are used, which also covers the
// Firestore emulator via FIRESTORE_EMULATOR_HOST.
func InitFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	fbConfig := &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	}

	var opts []option.ClientOption
	if cfg.FirebaseServiceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// GetAuthClient returns a Firebase Auth client from the app
func GetAuthClient(ctx context.Context, app *firebase.App) (*auth.Client, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}
	return client, nil
}

// GetMessagingClient returns the FCM client from the app
func GetMessagingClient(ctx context.Context, app *firebase.App) (*messaging.Client, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get FCM client: %w", err)
	}
	return client, nil
}

// GetFirestoreClient returns a Firestore client from the app. The caller
// closes it.
func GetFirestoreClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	return client, nil
}
