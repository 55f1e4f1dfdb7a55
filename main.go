package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/btgw/hm1x"
)

func main() {
	configFile := flag.String("config", "btgw.yaml", "Path to the YAML configuration file")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("transport", "serial", "How the module is attached (serial, i2c)")
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the module is connected to")
	flag.Int("baud-rate", 9600, "Baud rate the module is expected to use")
	flag.String("i2c-bus", "", "I2C bus of the Qwiic bridge (empty picks the first)")
	flag.String("i2c-address", "0x6F", "I2C address of the Qwiic bridge")
	flag.String("model", "HM-10", "Module model (HM-10 to HM-19)")
	flag.Bool("poll", true, "Enable connection notifications and polling")
	flag.Duration("poll-interval", 100*time.Millisecond, "Interval between two polls")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("log-format", "json", "Log format (json, text)")
	flag.String("log-output", "stderr", "Log output (stderr, stdout or a file path)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := NewLogger(config.Log)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	model, err := hm1x.ParseModel(config.Model)
	if err != nil {
		logger.Error("Invalid module model", "error", err)
		os.Exit(1)
	}

	var dialer hm1x.Dialer
	switch config.Transport {
	case "i2c":
		dialer = hm1x.I2CDialer{BusName: config.I2CBus, Address: config.I2CAddress}
	default:
		dialer = hm1x.SerialDialer{PortName: config.SerialPort, BaudRate: config.BaudRate}
	}

	deviceConfig, err := hm1x.NewConfigBuilder().
		WithDialer(dialer).
		WithModel(model).
		WithBaudRate(config.BaudRate).
		WithLogger(logger.With("component", "hm1x")).
		Build()
	if err != nil {
		logger.Error("Failed to create module config", "error", err)
		os.Exit(1)
	}

	d, err := hm1x.New(context.Background(), deviceConfig)
	if err != nil {
		logger.Error("Failed to open module", "error", err)
		os.Exit(1)
	}

	if config.Poll {
		if err := d.SetupPoll(); err != nil {
			logger.Error("Failed to enable notifications", "error", err)
			d.Close()
			os.Exit(1)
		}
	}

	logger.Info("Starting Bluetooth gateway", "model", model.String(), "transport", config.Transport)

	server := &Server{
		Logger: logger.With("component", "server"),
		Device: d,
	}
	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: server,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		if config.Poll {
			server.RunPoll(ctx, config.PollInterval)
		}
	}()

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	stop()
	<-pollDone

	logger.Info("Closing module connection")
	if err := d.Close(); err != nil {
		logger.Error("Failed to close module", "error", err)
	}
}
