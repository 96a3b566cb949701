package container

import (
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/testutil"
)

// Manager owns the docker resources of one e2e test run. Resources are
// auto-removed, but ClearResources should still be deferred so a passing run
// does not leave containers behind.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources []*dockertest.Resource
}

func NewManager(t *testing.T) (*Manager, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:  NewImageConfig(),
		pool: pool,
	}, nil
}

// RunMongoResource starts a mongodb container with the given root
// credentials and returns it with its randomly mapped host port.
func (m *Manager) RunMongoResource(t *testing.T, username, password, dbName string) (*dockertest.Resource, string, error) {
	t.Helper()

	containerName, err := containerName("mongo-e2e")
	if err != nil {
		return nil, "", err
	}

	resource, err := m.pool.RunWithOptions(&dockertest.RunOptions{
		Name:       containerName,
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + username,
			"MONGO_INITDB_ROOT_PASSWORD=" + password,
			"MONGO_INITDB_DATABASE=" + dbName,
		},
	}, noRestart)
	if err != nil {
		return nil, "", err
	}
	m.resources = append(m.resources, resource)

	return resource, resource.GetPort("27017/tcp"), nil
}

// RunRabbitmqResource starts a rabbitmq container and returns it with the
// host port mapped to the amqp listener.
func (m *Manager) RunRabbitmqResource(t *testing.T, username, password string) (*dockertest.Resource, string, error) {
	t.Helper()

	containerName, err := containerName("rabbitmq-e2e")
	if err != nil {
		return nil, "", err
	}

	resource, err := m.pool.RunWithOptions(&dockertest.RunOptions{
		Name:       containerName,
		Repository: m.cfg.RabbitmqRepository,
		Tag:        m.cfg.RabbitmqVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + username,
			"RABBITMQ_DEFAULT_PASS=" + password,
		},
	}, noRestart)
	if err != nil {
		return nil, "", err
	}
	m.resources = append(m.resources, resource)

	return resource, resource.GetPort("5672/tcp"), nil
}

// Retry runs op until it succeeds or the pool's retry budget is exhausted.
// Used to wait for a container to accept connections.
func (m *Manager) Retry(op func() error) error {
	return m.pool.Retry(op)
}

func (m *Manager) ClearResources(t *testing.T) {
	t.Helper()

	for _, resource := range m.resources {
		require.NoError(t, m.pool.Purge(resource))
	}
	m.resources = nil
}

func noRestart(config *docker.HostConfig) {
	config.AutoRemove = true
	config.RestartPolicy = docker.RestartPolicy{
		Name: "no",
	}
}

// there can be only 1 container with the same name, so a random suffix is
// added in case an old container is still running
func containerName(prefix string) (string, error) {
	randomString, err := testutil.RandomAlphaNum(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", prefix, randomString), nil
}
