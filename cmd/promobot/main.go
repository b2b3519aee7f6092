package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promo-bot/internal/bot"
	"promo-bot/internal/config"
	"promo-bot/internal/repository"
	"promo-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	ownerRepo := repository.NewOwnerRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot api: %v", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	scheduler := service.NewSchedulerService(time.Local)
	channelSvc := service.NewChannelService(channelRepo, api, api.Self.ID)
	verifySvc := service.NewVerifyService(userRepo, channelRepo, api)
	broadcastSvc := service.NewBroadcastService(channelRepo, scheduleRepo, scheduler, api)

	loaded, err := broadcastSvc.LoadJobs(ctx)
	if err != nil {
		log.Fatalf("load schedules: %v", err)
	}
	log.Printf("[info] loaded %d scheduled posts", loaded)

	scheduler.Start()
	defer scheduler.Stop()

	telegramBot := bot.New(api, &cfg, ownerRepo, userRepo, settingRepo, channelSvc, verifySvc, broadcastSvc)

	log.Printf("[info] promo bot started, primary owner: @%s", cfg.OwnerUsername)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
