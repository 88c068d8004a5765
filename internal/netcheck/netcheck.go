// Package netcheck answers one question: does this machine currently have
// a route to the public internet? It probes a series of well-known
// addresses with ICMP echo requests and reports the first reply it gets.
package netcheck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"os"
	"runtime"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"

	"github.com/infothrill/go-clitools/internal/execx"
)

// wellKnown are stable anycast/public addresses tried before anything else.
var wellKnown = []string{
	"216.58.213.238", // google
	"8.8.8.8",        // google
	"8.8.4.4",        // google
	"46.228.47.115",  // yahoo
}

// rootServers are the DNS root server addresses, the last resort: if none
// of them answer, the internet is unreachable for all practical purposes.
var rootServers = []string{
	"198.41.0.4",
	"192.228.79.201",
	"192.33.4.12",
	"128.8.10.90",
	"192.203.230.10",
	"192.5.5.241",
	"192.112.36.4",
	"128.63.2.53",
	"192.36.148.17",
	"192.58.128.30",
	"193.0.14.129",
	"198.32.64.12",
	"202.12.27.33",
}

const (
	randomProbes = 50
	probeJobs    = 8
)

// errReachable cancels the remaining probes of a stage once one host answered.
var errReachable = errors.New("reachable")

// Checker runs staged connectivity probes.
type Checker struct {
	// Timeout bounds a single echo request round trip.
	Timeout time.Duration

	// ping is replaceable for tests.
	ping func(ctx context.Context, addr string, timeout time.Duration) bool

	rng *rand.Rand
}

// New returns a Checker with a one second per-probe timeout.
func New() *Checker {
	c := &Checker{
		Timeout: time.Second,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.ping = c.pingHost
	return c
}

// Online reports whether any probe target answered an echo request. The
// stages run in order: well-known hosts first, then a batch of random
// global unicast addresses, then the DNS root servers. Within a stage
// probes run concurrently and the first reply wins.
func (c *Checker) Online(ctx context.Context) bool {
	stages := [][]string{
		wellKnown,
		c.randomTargets(randomProbes),
		rootServers,
	}
	for _, targets := range stages {
		if c.anyReachable(ctx, targets) {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func (c *Checker) anyReachable(ctx context.Context, targets []string) bool {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeJobs)
	for _, addr := range targets {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if c.ping(ctx, addr, c.Timeout) {
				return errReachable
			}
			return nil
		})
	}
	return errors.Is(g.Wait(), errReachable)
}

// randomTargets draws n random global unicast IPv4 addresses.
func (c *Checker) randomTargets(n int) []string {
	targets := make([]string, 0, n)
	for len(targets) < n {
		var b [4]byte
		for i := range b {
			b[i] = byte(1 + c.rng.Intn(254))
		}
		addr := netip.AddrFrom4(b)
		if !addr.IsGlobalUnicast() || addr.IsPrivate() {
			continue
		}
		targets = append(targets, addr.String())
	}
	return targets
}

// pingHost sends a single echo request. It prefers an unprivileged ICMP
// datagram socket and falls back to the system ping binary where the
// socket is not permitted (Linux restricts it via ping_group_range).
func (c *Checker) pingHost(ctx context.Context, addr string, timeout time.Duration) bool {
	ok, err := icmpEcho(ctx, addr, timeout)
	if err == nil {
		return ok
	}
	return execPing(ctx, addr, timeout)
}

// icmpEcho performs one echo round trip on an unprivileged datagram
// socket. A non-nil error means the socket could not be used at all;
// a timeout is reported as (false, nil).
func icmpEcho(ctx context.Context, addr string, timeout time.Duration) (bool, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		return false, fmt.Errorf("icmp listen: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return false, err
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("connectivity probe"),
		},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return false, err
	}
	dst := &net.UDPAddr{IP: net.ParseIP(addr)}
	if _, err := conn.WriteTo(wire, dst); err != nil {
		return false, err
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return false, nil
		}
		got, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), buf[:n])
		if err != nil {
			continue
		}
		if got.Type == ipv4.ICMPTypeEchoReply && peer.(*net.UDPAddr).IP.Equal(dst.IP) {
			return true, nil
		}
	}
}

// execPing shells out to the system ping binary, one packet, short wait.
func execPing(ctx context.Context, addr string, timeout time.Duration) bool {
	argv := []string{"ping", "-n", "-c", "1", "-W", "1", addr}
	if runtime.GOOS == "darwin" {
		argv = []string{"ping", "-n", "-c", "1", "-t", "1", addr}
	}
	_, err := execx.Run(ctx, execx.Cmd{Argv: argv, Timeout: timeout + time.Second})
	return err == nil
}
