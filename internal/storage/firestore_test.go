package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestFirestore(t *testing.T) *FirestoreStorage {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators",
			ExposedPorts: []string{"8080/tcp"},
			Cmd:          []string{"gcloud", "beta", "emulators", "firestore", "start", "--host-port", "0.0.0.0:8080"},
			WaitingFor:   wait.ForLog("Dev App Server is now running").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "8080/tcp", "")
	require.NoError(t, err)
	t.Setenv("FIRESTORE_EMULATOR_HOST", endpoint)

	client, err := ConnectFirestore(ctx, "storefront-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewFirestoreStorage(client)
}

func TestFirestoreStorage_Contract(t *testing.T) {
	runStorageContract(t, setupTestFirestore(t))
}

func TestFirestoreStorage_KeysWithSlashes(t *testing.T) {
	s := setupTestFirestore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "session:a/b", []byte(`"x"`)))
	got, err := s.Get(ctx, "session:a/b")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(got))

	_, err = s.Get(ctx, "session:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocID_EscapesSeparators(t *testing.T) {
	assert.Equal(t, "session:1%2FcartItems", docID("session:1/cartItems"))
	assert.Equal(t, "session:1:cartItems", docID("session:1:cartItems"))
}
