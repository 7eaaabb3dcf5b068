package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tunwatch/tunwatch/base/log"
	"github.com/tunwatch/tunwatch/base/metrics"
	"github.com/tunwatch/tunwatch/service"
	"github.com/tunwatch/tunwatch/service/mgr"
	"github.com/tunwatch/tunwatch/service/netmon"
)

const version = "0.1.0"

var (
	logLevel   string
	monitorCmd []string

	rootCmd = &cobra.Command{
		Use:   "tunwatch",
		Short: "monitors whether traffic is flowing through a VPN tunnel",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "set log level (debug, info, warn, error)")
	rootCmd.Flags().StringSliceVar(&monitorCmd, "monitor-cmd", nil, "override the network monitor command (eg. nmcli,monitor)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.SetupSLog(log.ParseLevel(logLevel))

	if err := metrics.SetNamespace("tunwatch"); err != nil {
		return fmt.Errorf("configure metrics: %w", err)
	}

	if len(monitorCmd) > 0 {
		netmon.MonitorCommand = monitorCmd
	}

	// Create instance.
	instance, err := service.New(version)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}

	// Relay monitor output to the console.
	startConsoleRelay(instance)

	// Start.
	if err := instance.Start(); err != nil {
		return fmt.Errorf("start instance: %w", err)
	}

	// Wait for signal.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(
		signalCh,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	<-signalCh

	fmt.Println(" <INTERRUPT>") // CLI output.
	slog.Warn("program was interrupted, stopping")

	// Stop instance.
	if err := instance.Stop(); err != nil {
		slog.Error("failed to stop", "err", err)
		return err
	}
	return nil
}

// startConsoleRelay subscribes to the monitor events and prints them.
// This is the stand-in for a real presentation layer, such as a tray
// indicator.
func startConsoleRelay(instance *service.Instance) {
	nm := instance.NetMon()
	m := nm.Manager()

	statusSub := nm.EventStatusChange.Subscribe("console", 16)
	logSub := nm.EventLogLine.Subscribe("console", 64)
	notifSub := instance.Notifications().EventNotify.Subscribe("console", 16)

	m.Go("console relay", func(w *mgr.WorkerCtx) error {
		for {
			select {
			case status := <-statusSub.Events():
				slog.Info("status", "value", status)
			case line := <-logSub.Events():
				fmt.Println(line)
			case notif := <-notifSub.Events():
				slog.Warn("notification", "title", notif.Title, "message", notif.Message, "critical", notif.IsCritical())
			case <-w.Done():
				return nil
			}
		}
	})
}
