package token

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

const latestVersion = "latest"

// GCPSecretStore keeps credentials in Google Secret Manager, one secret per scope.
type GCPSecretStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewGCPSecretStore(ctx context.Context, projectID string) (*GCPSecretStore, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}
	return &GCPSecretStore{client: client, projectID: projectID}, nil
}

func (s *GCPSecretStore) AccessLatest(ctx context.Context, secretID string) ([]byte, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/%s", s.projectID, secretID, latestVersion),
	})
	if err != nil {
		return nil, err
	}
	return res.GetPayload().GetData(), nil
}

func (s *GCPSecretStore) AddVersion(ctx context.Context, secretID string, data []byte) error {
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  fmt.Sprintf("projects/%s/secrets/%s", s.projectID, secretID),
		Payload: &secretmanagerpb.SecretPayload{Data: data},
	})
	return err
}

func (s *GCPSecretStore) Close() error {
	return s.client.Close()
}
