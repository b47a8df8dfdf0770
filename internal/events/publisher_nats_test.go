// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

//go:build nats

package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mlavoie-cs/terrastac/internal/config"
)

// startJetStream runs an embedded NATS server with JetStream enabled on
// a random port for the duration of the test.
func startJetStream(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		ServerName: "terrastac-test",
		Host:       "127.0.0.1",
		Port:       -1,
		JetStream:  true,
		StoreDir:   t.TempDir(),
		NoLog:      true,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("embedded NATS server not ready within timeout")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func eventsConfig(url string) config.EventsConfig {
	cfg := config.Defaults().Events
	cfg.Enabled = true
	cfg.URL = url
	return cfg
}

func TestNATSPublisherEndToEnd(t *testing.T) {
	t.Parallel()

	ns := startJetStream(t)
	cfg := eventsConfig(ns.ClientURL())

	pub, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	t.Cleanup(func() { pub.Close() })

	ctx := context.Background()

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(nc.Close)
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream.New() error = %v", err)
	}

	stream, err := js.Stream(ctx, cfg.Stream)
	if err != nil {
		t.Fatalf("stream %q not provisioned: %v", cfg.Stream, err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		t.Fatalf("stream Info() error = %v", err)
	}
	if want := cfg.SubjectPrefix + ".>"; len(info.Config.Subjects) != 1 || info.Config.Subjects[0] != want {
		t.Fatalf("stream subjects = %v, want [%s]", info.Config.Subjects, want)
	}

	event := NewEvent(EntityItem, ActionCreate, "sentinel-2-l2a", "S2B_33UUU")
	if err := pub.PublishTransaction(ctx, event); err != nil {
		t.Fatalf("PublishTransaction() error = %v", err)
	}

	// Same event ID again: JetStream must deduplicate, not append.
	if err := pub.PublishTransaction(ctx, event); err != nil {
		t.Fatalf("PublishTransaction() retry error = %v", err)
	}
	info, err = stream.Info(ctx)
	if err != nil {
		t.Fatalf("stream Info() error = %v", err)
	}
	if info.State.Msgs != 1 {
		t.Errorf("stream holds %d messages after duplicate publish, want 1", info.State.Msgs)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: cfg.SubjectPrefix + ".item.create",
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateConsumer() error = %v", err)
	}
	batch, err := cons.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	var msgs []jetstream.Msg
	for msg := range batch.Messages() {
		msgs = append(msgs, msg)
	}
	if err := batch.Error(); err != nil {
		t.Fatalf("Fetch() batch error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("fetched %d messages, want 1", len(msgs))
	}

	var got Event
	if err := json.Unmarshal(msgs[0].Data(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID != event.ID || got.Entity != EntityItem || got.Action != ActionCreate {
		t.Errorf("event = %+v, want id=%s entity=item action=create", got, event.ID)
	}
	if got.Collection != "sentinel-2-l2a" || got.Item != "S2B_33UUU" {
		t.Errorf("event names = %s/%s, want sentinel-2-l2a/S2B_33UUU", got.Collection, got.Item)
	}
	if id := msgs[0].Headers().Get(natsgo.MsgIdHdr); id != event.ID {
		t.Errorf("Nats-Msg-Id = %q, want %q", id, event.ID)
	}
	if e := msgs[0].Headers().Get("entity"); e != EntityItem {
		t.Errorf("entity header = %q, want %q", e, EntityItem)
	}

	// A second publisher against the same broker takes the update path.
	again, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() with existing stream error = %v", err)
	}
	if err := again.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNATSPublisherClosed(t *testing.T) {
	t.Parallel()

	ns := startJetStream(t)
	pub, err := NewPublisher(eventsConfig(ns.ClientURL()))
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	err = pub.PublishTransaction(context.Background(), NewEvent(EntityCollection, ActionDelete, "c", ""))
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("PublishTransaction() after Close error = %v, want closed", err)
	}
}

func TestNATSPublisherBrokerUnreachable(t *testing.T) {
	t.Parallel()

	cfg := eventsConfig("nats://127.0.0.1:1")
	if _, err := NewPublisher(cfg); err == nil {
		t.Fatal("NewPublisher() with unreachable broker should fail fast")
	}
}
