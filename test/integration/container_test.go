//go:build integration

package integration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/careconnect/careconnect/internal/platform/db"
)

const (
	postgresImage = "postgres:16-alpine"
	readyTimeout  = 45 * time.Second
)

func docker(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// startPostgresContainer launches a throwaway Postgres on a Docker-assigned
// loopback port and returns its DSN with a function that removes it.
func startPostgresContainer(ctx context.Context) (string, func(), error) {
	id, err := docker(ctx, "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=careconnect",
		"-e", "POSTGRES_PASSWORD=careconnect",
		"-e", "POSTGRES_DB=careconnect_test",
		postgresImage,
	)
	if err != nil {
		return "", nil, err
	}
	// image pull progress may precede the container id
	id = id[strings.LastIndex(id, "\n")+1:]
	stop := func() { _, _ = docker(context.Background(), "rm", "-f", id) }

	// "127.0.0.1:49153"
	hostPort, err := docker(ctx, "port", id, "5432/tcp")
	if err != nil {
		stop()
		return "", nil, err
	}
	hostPort = strings.SplitN(hostPort, "\n", 2)[0]

	dsn := fmt.Sprintf("postgres://careconnect:careconnect@%s/careconnect_test?sslmode=disable", hostPort)
	if err := awaitReady(ctx, dsn); err != nil {
		stop()
		return "", nil, err
	}
	return dsn, stop, nil
}

func awaitReady(ctx context.Context, dsn string) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		pool, err := db.NewPool(ctx, dsn, 1, 0)
		if err == nil {
			pool.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready: %w", err)
		case <-tick.C:
		}
	}
}
