package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/ppiankov/riskgate/internal/model"
	"github.com/ppiankov/riskgate/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()
	srv, err := server.New(server.Config{})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)
	t.Cleanup(srv.GracefulStop)
	return lis.Addr().String()
}

func TestClassifyOverGRPC(t *testing.T) {
	c, err := New(startServer(t))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	reply, err := c.Classify(context.Background(), model.NewProfile(12, model.PlanningAndExecution, 2,
		model.FixedPrice, model.EstablishedClient, model.PrivateClient, model.Profit(2_500_000)))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	r := reply.Result
	if r.BaseRisk != model.Medium || r.Risk != model.Low {
		t.Errorf("expected medium → low, got %s → %s", r.BaseRisk, r.Risk)
	}
	if len(r.Applied) != 1 || r.Applied[0].Override != "profit" {
		t.Errorf("expected profit override, got %+v", r.Applied)
	}
}

func TestClassifyPreservesTaxonomy(t *testing.T) {
	c, err := New(startServer(t))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, err = c.Classify(context.Background(), model.NewProfile(15, model.PlanningAndExecution, 7,
		model.Hourly, model.EstablishedClient, model.PrivateClient, nil))
	if !errors.Is(err, model.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestRuleBaseInfo(t *testing.T) {
	c, err := New(startServer(t))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	info, err := c.RuleBaseInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Error("expected a version")
	}
}

func TestUnreachableServerIsNotALevel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := lis.Addr().String()
	lis.Close()

	c, err := New(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	reply, err := c.Classify(context.Background(), model.NewProfile(15, model.PlanningAndExecution, 2,
		model.Hourly, model.EstablishedClient, model.PrivateClient, nil))
	if err == nil {
		t.Fatalf("expected transport error, got %+v", reply)
	}
	if model.Outcome(err) != model.OutcomeUnknownError {
		t.Errorf("expected transport error outside the taxonomy, got %s", model.Outcome(err))
	}
}
