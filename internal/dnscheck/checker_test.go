package dnscheck

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startTestResolver runs a DNS server on a loopback UDP socket that answers
// lab.example.com with a fixed A record and everything else with NXDOMAIN.
func startTestResolver(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)

		if len(r.Question) == 1 && r.Question[0].Name == "lab.example.com." && r.Question[0].Qtype == dns.TypeA {
			rr, err := dns.NewRR("lab.example.com. 60 IN A 192.0.2.10")
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		} else {
			m.Rcode = dns.RcodeNameError
		}

		_ = w.WriteMsg(m)
	})

	server := &dns.Server{PacketConn: pc, Handler: mux}
	go func() {
		_ = server.ActivateAndServe()
	}()
	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	return pc.LocalAddr().String()
}

func TestChecker_CheckA_Match(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := checker.CheckA(context.Background(), "lab.example.com", "192.0.2.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected record to match")
	}
}

func TestChecker_CheckA_WrongAddress(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := checker.CheckA(context.Background(), "lab.example.com", "192.0.2.99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected mismatch for wrong address")
	}
}

func TestChecker_CheckA_NXDomain(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := checker.CheckA(context.Background(), "missing.example.com", "192.0.2.10")
	if err != nil {
		t.Fatalf("NXDOMAIN should not be an error: %v", err)
	}
	if ok {
		t.Error("expected no match for unknown name")
	}
}

func TestChecker_CheckA_InvalidIP(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := checker.CheckA(context.Background(), "lab.example.com", "not-an-ip"); err == nil {
		t.Error("expected error for invalid address")
	}
	if _, err := checker.CheckA(context.Background(), "lab.example.com", "2001:db8::1"); err == nil {
		t.Error("expected error for IPv6 address on A check")
	}
}

func TestChecker_WaitForA_Success(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := checker.WaitForA(ctx, "lab.example.com", "192.0.2.10", 10*time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChecker_WaitForA_Timeout(t *testing.T) {
	addr := startTestResolver(t)

	checker, err := NewChecker(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = checker.WaitForA(ctx, "missing.example.com", "192.0.2.10", 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestNewChecker_DefaultPort(t *testing.T) {
	checker, err := NewChecker("192.0.2.53")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checker.Resolver() != "192.0.2.53:53" {
		t.Errorf("expected default port appended, got %s", checker.Resolver())
	}

	checker, err = NewChecker("192.0.2.53:5353")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checker.Resolver() != "192.0.2.53:5353" {
		t.Errorf("expected explicit port preserved, got %s", checker.Resolver())
	}
}
