package wastegrpc_test

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/wasteledger"
	wastegrpc "github.com/blockberries/wasteledger/grpc"
	"github.com/blockberries/wasteledger/ledger"
	"github.com/blockberries/wasteledger/store/memory"
	ledgertest "github.com/blockberries/wasteledger/testing"
	"github.com/blockberries/wasteledger/types"
)

// startServer starts a gRPC server on a random port and returns the
// listener address and a cleanup function.
func startServer(t *testing.T, gs *wastegrpc.GRPCServer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	gs.Register(s)

	go func() {
		s.Serve(lis)
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
	}
}

func dial(t *testing.T, addr string) *wastegrpc.Client {
	t.Helper()
	client, err := wastegrpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func startLedger(t *testing.T) *wastegrpc.Client {
	t.Helper()
	core := ledger.New(memory.New())
	if err := core.Bootstrap(context.Background(), ledgertest.SuiteAdmin); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	addr, stop := startServer(t, wastegrpc.NewGRPCServer(core))
	t.Cleanup(stop)
	client := dial(t, addr)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGRPC_Compliance(t *testing.T) {
	ledgertest.RunComplianceSuite(t, func(t *testing.T) wasteledger.Ledger {
		return startLedger(t)
	})
}

func TestGRPC_RejectionCodesSurviveTheWire(t *testing.T) {
	client := startLedger(t)
	h := ledgertest.NewHarness(t, client)
	ctx := context.Background()

	// NotFound from a remote call matches the local sentinel.
	err := client.TransferOwnership(ctx, h.Env("a"), 42, "b")
	if !errors.Is(err, wasteledger.ErrNotFound) {
		t.Fatalf("remote NotFound: %v", err)
	}
	var typed *wasteledger.Error
	if !errors.As(err, &typed) {
		t.Fatalf("remote rejection is not a typed error: %T", err)
	}
	if typed.Code != wasteledger.CodeNotFound {
		t.Errorf("code = %v", typed.Code)
	}

	id := h.MustRegister("a")
	if _, err := client.AppendVersion(ctx, h.Env("b"), id, types.Digest("h2"), ""); !errors.Is(err, wasteledger.ErrNotOwner) {
		t.Errorf("remote NotOwner: %v", err)
	}
	if err := client.Pause(ctx, h.Env("a")); !errors.Is(err, wasteledger.ErrNotAuthorized) {
		t.Errorf("remote NotAuthorized: %v", err)
	}
}

func TestGRPC_RoundTripPreservesListOrder(t *testing.T) {
	client := startLedger(t)
	h := ledgertest.NewHarness(t, client)
	ctx := context.Background()
	id := h.MustRegister("a")

	tags := []string{"toxic", "flammable", "corrosive"}
	if err := client.SetCategory(ctx, h.Env("a"), id, "hazardous", tags); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	ci, err := client.Category(ctx, id)
	if err != nil || ci == nil {
		t.Fatalf("Category: %v %v", ci, err)
	}
	for i, tag := range tags {
		if ci.Tags[i] != tag {
			t.Fatalf("tag order changed over the wire: %v", ci.Tags)
		}
	}

	perms := []string{"add-note", "flag", "escalate"}
	h.MustAddCollaborator("a", id, "b", "inspector", perms...)
	g, err := client.Collaborator(ctx, id, "b")
	if err != nil || g == nil {
		t.Fatalf("Collaborator: %v %v", g, err)
	}
	for i, p := range perms {
		if g.Permissions[i] != p {
			t.Fatalf("permission order changed over the wire: %v", g.Permissions)
		}
	}
}

func TestGRPC_AbsentRecordsReadAsNil(t *testing.T) {
	client := startLedger(t)
	ctx := context.Background()

	if e, err := client.Entry(ctx, 7); err != nil || e != nil {
		t.Errorf("Entry: %v %v", e, err)
	}
	if v, err := client.Version(ctx, 7, 1); err != nil || v != nil {
		t.Errorf("Version: %v %v", v, err)
	}
	if ci, err := client.Category(ctx, 7); err != nil || ci != nil {
		t.Errorf("Category: %v %v", ci, err)
	}
	if ok, err := client.HasPermission(ctx, 7, "x", "add-note"); err != nil || ok {
		t.Errorf("HasPermission: %v %v", ok, err)
	}
}

func TestGRPC_MetricsRecordRejectionCodes(t *testing.T) {
	// Metrics plug in as a standard unary interceptor.
	core := ledger.New(memory.New())
	if err := core.Bootstrap(context.Background(), ledgertest.SuiteAdmin); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := wastegrpc.NewMetrics(reg)
	s := grpc.NewServer(grpc.UnaryInterceptor(m.UnaryInterceptor()))
	wastegrpc.NewGRPCServer(core).Register(s)
	go s.Serve(lis)
	defer s.GracefulStop()

	client := dial(t, lis.Addr().String())
	defer client.Close()

	h := ledgertest.NewHarness(t, client)
	h.MustRegister("a")
	client.TransferOwnership(context.Background(), h.Env("b"), 1, "c") // NotOwner

	fams, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var total float64
	var sawRejection bool
	for _, fam := range fams {
		if fam.GetName() != "wasteledger_grpc_requests_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			total += metric.GetCounter().GetValue()
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if strings.HasSuffix(labels["method"], "/TransferOwnership") &&
				labels["code"] == strconv.FormatUint(uint64(wasteledger.CodeNotOwner), 10) {
				sawRejection = true
			}
		}
	}
	if total < 2 {
		t.Errorf("requests_total = %v, want at least 2", total)
	}
	if !sawRejection {
		t.Error("no TransferOwnership sample labeled with the NotOwner code")
	}
}
