// Package testhelpers starts throwaway service containers for integration
// tests. Every helper skips the test under -short.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type container struct {
	once sync.Once
	addr string
	err  error
}

var (
	postgresC container
	mongoC    container
	redisC    container
	minioC    container
)

const (
	MinIOAccessKey = "careerpilot"
	MinIOSecretKey = "test_password"
)

// PostgresDSN returns a GORM DSN for a shared PostgreSQL container.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	addr := start(t, &postgresC, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "careerpilot_test",
			"POSTGRES_USER":     "careerpilot",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")
	host, port := splitAddr(addr)
	return fmt.Sprintf("host=%s user=careerpilot password=test_password dbname=careerpilot_test port=%s sslmode=disable TimeZone=UTC", host, port)
}

// MongoURI returns a connection URI for a shared MongoDB container.
func MongoURI(t *testing.T) string {
	t.Helper()
	addr := start(t, &mongoC, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
	}, "27017")
	return "mongodb://" + addr
}

// RedisAddr returns host:port of a shared Redis container.
func RedisAddr(t *testing.T) string {
	t.Helper()
	return start(t, &redisC, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")
}

// MinIOEndpoint returns host:port of a shared MinIO container using
// MinIOAccessKey and MinIOSecretKey.
func MinIOEndpoint(t *testing.T) string {
	t.Helper()
	return start(t, &minioC, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinIOAccessKey,
			"MINIO_ROOT_PASSWORD": MinIOSecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}, "9000")
}

func start(t *testing.T, c *container, req testcontainers.ContainerRequest, port string) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	c.once.Do(func() {
		ctx := context.Background()
		ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			c.err = fmt.Errorf("failed to start %s container: %w", req.Image, err)
			return
		}
		host, err := ctr.Host(ctx)
		if err != nil {
			c.err = fmt.Errorf("failed to get container host: %w", err)
			return
		}
		mapped, err := ctr.MappedPort(ctx, port+"/tcp")
		if err != nil {
			c.err = fmt.Errorf("failed to get container port: %w", err)
			return
		}
		c.addr = host + ":" + mapped.Port()
	})

	if c.err != nil {
		t.Fatalf("Failed to set up %s: %v", req.Image, c.err)
	}
	return c.addr
}

func splitAddr(addr string) (string, string) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:]
		}
	}
	return addr, ""
}
