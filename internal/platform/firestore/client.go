package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/config"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// New creates a Firestore client. Against an emulator no credentials are
// sent; otherwise they come from env (base64 or file). It returns the client
// and a description of which credential source was used.
func New(ctx context.Context, cfg config.Config) (*firestore.Client, string, error) {
	var (
		opts   []option.ClientOption
		source string
	)
	if cfg.FirestoreEmulatorHost != "" {
		opts = append(opts, option.WithoutAuthentication())
		source = "emulator " + cfg.FirestoreEmulatorHost
	} else {
		creds, credsSource, err := cfg.FirebaseCredentialsJSON()
		if err != nil {
			return nil, "", err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
		source = credsSource
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("init firestore client: %w", err)
	}
	return client, source, nil
}

// Ping reads a single well-known document; a missing document still proves
// the connection works.
func Ping(ctx context.Context, client *firestore.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := client.Collection("system").Doc("active").Get(ctx)
	if err == nil || status.Code(err) == codes.NotFound {
		return nil
	}
	return fmt.Errorf("ping firestore: %w", err)
}
