package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"guildhall/internal"
	"guildhall/internal/data"
	"guildhall/internal/input"
	"guildhall/internal/nlog"
	"guildhall/internal/service"
)

func main() {
	folder := flag.String("config", ".", "Folder holding the .cfg and .env files")
	flag.Parse()

	if err := run(*folder); err != nil {
		fmt.Fprintf(os.Stderr, "guildhall: %v\n", err)
		os.Exit(1)
	}
}

func run(folder string) error {
	cfg, err := internal.LoadConfig(folder)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := nlog.NewAppLogger(cfg.FolderPath, cfg.EnableLogging)
	if err != nil {
		return err
	}
	defer logger.CloseAll()

	logCtx, stopLogging := context.WithCancel(context.Background())
	loggingDone := make(chan struct{})
	go func() {
		logger.Run(logCtx)
		close(loggingDone)
	}()
	defer func() {
		stopLogging()
		<-loggingDone
	}()

	httpLog, err := logger.RegisterSubsystem("http")
	if err != nil {
		return err
	}
	serviceLog, err := logger.RegisterSubsystem("service")
	if err != nil {
		return err
	}

	db, err := data.OpenDatabase(cfg.FolderPath, cfg.DBName)
	if err != nil {
		return err
	}
	storage, err := data.NewStorageManager(db)
	if err != nil {
		return err
	}
	defer storage.Close()

	servers := service.NewServerService(storage.GetServerRepository(), storage.GetMemberRepository(), storage.GetChannelRepository(), serviceLog)
	messages := service.NewMessageService(servers, storage.GetMessageRepository(), serviceLog)
	profiles := service.NewProfileService(storage.GetProfileRepository(), serviceLog)

	inputManager := input.NewInputManager()
	inputManager.SetLogger(httpLog)
	inputManager.SetServices(profiles, servers, messages)

	fmt.Printf("Listening on :%d\n", cfg.HTTPServerPort)
	if err := inputManager.Run(ctx, input.ConfigFrom(cfg)); err != nil {
		return err
	}

	fmt.Printf("Shutting off...\n")
	return nil
}
