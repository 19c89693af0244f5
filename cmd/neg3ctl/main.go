// Command neg3ctl drives a G3-PLC modem over its serial USI link: it brings
// the stack up, runs the bootstrap authenticator (coordinator) or join
// client (modem), bridges the ADP data plane to a Linux TUN interface, and
// serves Prometheus stats. Flag parsing follows kissutil.go's pflag idiom;
// wiring is otherwise new to this repository.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/g3plc/neg3ctl/internal/authenticator"
	"github.com/g3plc/neg3ctl/internal/bringup"
	"github.com/g3plc/neg3ctl/internal/config"
	"github.com/g3plc/neg3ctl/internal/eappsk"
	"github.com/g3plc/neg3ctl/internal/g3"
	"github.com/g3plc/neg3ctl/internal/heartbeat"
	"github.com/g3plc/neg3ctl/internal/ipv6addr"
	"github.com/g3plc/neg3ctl/internal/join"
	"github.com/g3plc/neg3ctl/internal/lbp"
	"github.com/g3plc/neg3ctl/internal/neg3log"
	"github.com/g3plc/neg3ctl/internal/netbridge"
	"github.com/g3plc/neg3ctl/internal/port"
	"github.com/g3plc/neg3ctl/internal/stats"
	"github.com/g3plc/neg3ctl/internal/tun"
	"github.com/g3plc/neg3ctl/internal/usi"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := pflag.String("config", "", "path to the YAML configuration file")
	statsAddr := pflag.String("stats-addr", ":9100", "address the Prometheus stats endpoint listens on")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug-level logging")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <serial-port> <coordinator:true|false>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neg3ctl: config error: %v\n", err)
		return 1
	}

	args := pflag.Args()
	if len(args) >= 1 && args[0] != "" {
		cfg.Serial.Name = args[0]
	}
	if len(args) >= 2 {
		switch args[1] {
		case "true":
			cfg.G3.Mode = config.ModeCoordinator
		case "false":
			cfg.G3.Mode = config.ModeModem
		default:
			fmt.Fprintf(os.Stderr, "neg3ctl: coordinator flag must be true or false, got %q\n", args[1])
			return 1
		}
	}
	if cfg.Serial.Name == "" {
		fmt.Fprintln(os.Stderr, "neg3ctl: serial port path is required")
		return 1
	}

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	isCoordinator := cfg.G3.Mode == config.ModeCoordinator

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := newApp(cfg, isCoordinator, level)
	if err := a.open(); err != nil {
		fmt.Fprintf(os.Stderr, "neg3ctl: %v\n", err)
		return 1
	}
	defer a.close()

	metrics := stats.NewMetrics(nil)
	statsSrv := stats.NewServer(*statsAddr, nil, neg3log.New("stats", level))
	statsSrv.Start(ctx)

	a.run(ctx, metrics)
	return 0
}

// app wires together the port, bring-up controller, authenticator/join
// client, heartbeat, and network bridge tasks for one process lifetime.
type app struct {
	cfg           *config.Config
	isCoordinator bool
	level         log.Level

	p       *port.Port
	control *bringup.Controller
	auth    *authenticator.Authenticator
	joinCl  *join.Client
	bridge  *netbridge.Bridge
	tunDev  *tun.Device
	ticker  *heartbeat.Ticker

	tunConfigured bool
}

func newApp(cfg *config.Config, isCoordinator bool, level log.Level) *app {
	return &app{cfg: cfg, isCoordinator: isCoordinator, level: level}
}

func (a *app) open() error {
	p, err := port.Open(a.cfg.Serial.Name, int(a.cfg.Serial.Speed), neg3log.New("port", a.level))
	if err != nil {
		return fmt.Errorf("opening serial port: %w", err)
	}
	a.p = p

	a.control = bringup.New(bringup.Config{
		IsCoordinator:            a.isCoordinator,
		PanID:                    a.cfg.G3.PanID,
		Band:                     g3.Band(a.cfg.G3.Band),
		PSK:                      a.cfg.G3.PSK,
		GMK:                      a.cfg.G3.GMK,
		MaxHops:                  a.cfg.G3.MaxHops,
		ContextInformationTable0: a.cfg.G3.ContextInformationTable0,
		ContextInformationTable1: a.cfg.G3.ContextInformationTable1,
		Logger:                   neg3log.New("bringup", a.level),
	})

	var psk eappsk.Key
	copy(psk[:], a.cfg.G3.PSK)

	if a.isCoordinator {
		var gmk, rekeyGMK [16]byte
		copy(gmk[:], a.cfg.G3.GMK)
		copy(rekeyGMK[:], a.cfg.G3.RekeyGMK)
		a.auth = authenticator.New(authenticator.Config{
			PSK:      psk,
			GMK:      gmk,
			RekeyGMK: rekeyGMK,
			IdS:      a.cfg.G3.IdsCenelecFCC,
			MaxHops:  a.cfg.G3.MaxHops,
			Logger:   neg3log.New("authenticator", a.level),
		})
	}

	tunDev, err := tun.Open(a.cfg.Network.Tun)
	if err != nil {
		return fmt.Errorf("opening tun device: %w", err)
	}
	a.tunDev = tunDev

	a.bridge = netbridge.New(netbridge.Config{
		Logger: neg3log.New("netbridge", a.level),
	}, tunDev, func(req g3.Request) {
		a.p.Send(usi.NewOutMessage(usi.ProtocolAdpG3, req.Payload()))
	})

	a.ticker = heartbeat.New(heartbeat.Interval)
	return nil
}

func (a *app) close() {
	if a.tunDev != nil {
		a.tunDev.Close()
	}
}

// run starts every task and drives inbound port frames until ctx is
// cancelled.
func (a *app) run(ctx context.Context, metrics *stats.Metrics) {
	frames := make(chan port.Frame, 64)
	a.p.Subscribe(frames)
	a.p.Start(ctx)
	a.bridge.Start(ctx)

	// Ticks are handed to this loop so the authenticator and bring-up
	// controller are only ever touched from one goroutine.
	ticks := make(chan time.Time, 1)
	a.ticker.Start(ctx, func(now time.Time) {
		select {
		case ticks <- now:
		default:
		}
	})

	a.p.Send(a.control.Start())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticks:
			metrics.ObserveHeartbeat()
			if a.isCoordinator {
				a.auth.Tick(now)
			}
			if msg, ok := a.control.Tick(); ok {
				a.p.Send(msg)
			}
		case f := <-frames:
			a.handleFrame(f, metrics)
		}
	}
}

func (a *app) handleFrame(f port.Frame, metrics *stats.Metrics) {
	if f.Protocol != usi.ProtocolAdpG3 {
		return
	}
	ind, err := g3.Decode(f.Payload)
	if err != nil {
		metrics.ObserveCRCError()
		return
	}
	metrics.ObserveFrame(fmt.Sprintf("0x%02x", byte(ind.Primitive)))

	if msg, ok := a.control.HandleIndication(ind); ok {
		a.p.Send(msg)
	}

	switch {
	case ind.Data != nil:
		a.bridge.HandleDataIndication(*ind.Data, time.Now())
	case ind.LbpIndication != nil:
		a.handleLbp(*ind.LbpIndication, metrics)
	case ind.LbpConfirm != nil && a.isCoordinator:
		a.auth.HandleConfirm(ind.LbpConfirm.NsduHandle, ind.LbpConfirm.Status)
	}

	switch {
	case a.control.State() == bringup.StateJoinNetwork && a.joinCl == nil && !a.isCoordinator:
		a.startJoin()
	case a.control.State() == bringup.StateReady && a.isCoordinator && !a.tunConfigured:
		a.tunConfigured = true
		a.configureTun(join.Result{ShortAddr: 0})
	}
}

func (a *app) handleLbp(li g3.LbpIndication, metrics *stats.Metrics) {
	msg, err := lbp.Decode(li.Nsdu)
	if err != nil {
		return
	}
	if a.isCoordinator {
		out, ok := a.auth.HandleIndication(msg)
		if !ok {
			return
		}
		metrics.ObserveSlotTransition("challenge")
		req := g3.NewLbpRequest(out.DstAddr, out.Nsdu, out.Handle, a.cfg.G3.MaxHops, true, 0, false)
		a.p.Send(usi.NewOutMessage(usi.ProtocolAdpG3, req.Payload()))
		return
	}

	if a.joinCl == nil {
		return
	}
	req, ok := a.joinCl.HandleIndication(msg)
	if ok {
		a.p.Send(usi.NewOutMessage(usi.ProtocolAdpG3, req.Payload()))
	}
	a.checkJoinOutcome()
}

func (a *app) startJoin() {
	var psk eappsk.Key
	copy(psk[:], a.cfg.G3.PSK)
	extAddr, _ := a.control.ExtendedAddr()

	coordAddr := g3.ShortAddress(0)
	if descs := a.control.PanDescriptors(); len(descs) > 0 {
		coordAddr = g3.ShortAddress(descs[0].LbaAddress)
	}

	a.joinCl = join.New(join.Config{
		PSK:       psk,
		ExtAddr:   extAddr,
		CoordAddr: coordAddr,
		MaxHops:   a.cfg.G3.MaxHops,
		Logger:    neg3log.New("join", a.level),
	})
	req := a.joinCl.Start()
	a.p.Send(usi.NewOutMessage(usi.ProtocolAdpG3, req.Payload()))
}

func (a *app) checkJoinOutcome() {
	switch a.joinCl.State() {
	case join.StateAccepted:
		a.control.JoinResult(true)
		a.tunConfigured = true
		a.configureTun(a.joinCl.Result())
	case join.StateDeclined:
		a.control.JoinResult(false)
		a.joinCl = nil
	}
}

func (a *app) configureTun(res join.Result) {
	extAddr, _ := a.control.ExtendedAddr()
	var netPrefix [8]byte
	copy(netPrefix[:], a.cfg.Network.UlaNetPrefix)

	ula := ipv6addr.ULA(netPrefix, extAddr)
	linkLocal := ipv6addr.LinkLocal(a.cfg.G3.PanID, res.ShortAddr)

	if err := a.tunDev.Configure([]net.IP{ula, linkLocal}, int(a.cfg.Network.UlaNetPrefixLen), 1280); err != nil {
		neg3log.New("tun", a.level).Error("configuring tun device", "err", err)
	}
}
