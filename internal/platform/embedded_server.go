package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"log/slog"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedServerConfig holds options for running the embedded server.
type EmbeddedServerConfig struct {
	InProcess       bool   `yaml:"in_process"`
	EnableLogging   bool   `yaml:"enable_logging"`
	JetStream       bool   `yaml:"jetstream"`
	JetStreamDomain string `yaml:"jetstream_domain"`
	LeafNodeURL     string `yaml:"leaf_node_url"`   // empty disables leaf node
	LeafNodeCreds   string `yaml:"leaf_node_creds"` // optional, only used if LeafNodeURL is set
	StoreDir        string `yaml:"store_dir"`       // optional, for JetStream file storage
}

// RunEmbeddedServer starts an embedded NATS server with the given config and returns a client connection, the server instance, and an error channel.
func RunEmbeddedServer(ctx context.Context, cfg EmbeddedServerConfig) (*nats.Conn, *server.Server, <-chan error, error) {
	var leafRemotes []*server.RemoteLeafOpts
	if cfg.LeafNodeURL != "" {
		leafURL, err := url.Parse(cfg.LeafNodeURL)
		if err != nil {
			return nil, nil, nil, err
		}
		leafRemotes = []*server.RemoteLeafOpts{{
			URLs:        []*url.URL{leafURL},
			Credentials: cfg.LeafNodeCreds,
		}}
	}

	opts := &server.Options{
		ServerName:      "clipper",
		DontListen:      cfg.InProcess,
		JetStream:       cfg.JetStream,
		JetStreamDomain: cfg.JetStreamDomain,
		StoreDir:        cfg.StoreDir,
	}
	if len(leafRemotes) > 0 {
		opts.LeafNode = server.LeafNodeOpts{Remotes: leafRemotes}
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("new embedded server: %w", err)
	}
	if cfg.EnableLogging {
		ns.SetLogger(NewNATSServerLogger(slog.Default()), false, false)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, nil, nil, errors.New("NATS Server timeout")
	}

	clientOpts := []nats.Option{}
	if cfg.InProcess {
		clientOpts = append(clientOpts, nats.InProcessServer(ns))
	}

	clientOpts = append(clientOpts, nats.Name("clipper"))
	nc, err := nats.Connect(ns.ClientURL(), clientOpts...)
	if err != nil {
		ns.Shutdown()
		return nil, nil, nil, fmt.Errorf("connect embedded server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		// Context cancellation is handled by the caller (e.g., via a deferred ns.Shutdown()).
		// Avoid shutting down the server twice, which can cause panics in the NATS
		// server when internal channels are closed more than once.
		errCh <- ctx.Err()
	}()

	return nc, ns, errCh, nil
}
