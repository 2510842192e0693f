package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/config"
	"github.com/stocksim-network/stocksim-daemon/internal/core/application"
	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
	"github.com/stocksim-network/stocksim-daemon/internal/infrastructure/pubsub"
	webhookpubsub "github.com/stocksim-network/stocksim-daemon/internal/infrastructure/pubsub/webhook"
	websocketpubsub "github.com/stocksim-network/stocksim-daemon/internal/infrastructure/pubsub/websocket"
	dbbadger "github.com/stocksim-network/stocksim-daemon/internal/infrastructure/storage/db/badger"
	"github.com/stocksim-network/stocksim-daemon/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/stocksim-network/stocksim-daemon/internal/interfaces/http"
	"github.com/stocksim-network/stocksim-daemon/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	if config.GetBool(config.EnableProfilerKey) {
		statsCtx, stopStats := context.WithCancel(context.Background())
		defer stopStats()
		stats.EnableMemoryStatistics(
			statsCtx, 10*time.Minute,
			filepath.Join(config.GetDatadir(), config.ProfilerLocation),
		)
	}

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("error while opening storage")
	}
	defer repoManager.Close()

	socketSvc := websocketpubsub.NewWebSocketPubSubService()
	pubsubServices := []ports.PubSub{socketSvc}
	if endpoints := config.GetStringSlice(config.WebhookEndpointsKey); len(endpoints) > 0 {
		pubsubServices = append(pubsubServices, webhookpubsub.NewWebhookPubSubService(
			map[string][]string{webhookpubsub.AllTopics: endpoints},
		))
	}
	pubsubSvc := pubsub.NewCompositePubSubService(pubsubServices...)
	defer pubsubSvc.Close()

	appSvc := application.NewService(repoManager, pubsubSvc, application.ServiceOpts{
		TaxRate:          decimal.NewFromFloat(config.GetFloat(config.TaxRateKey)),
		MinTax:           decimal.NewFromFloat(config.GetFloat(config.MinTaxKey)),
		FeeAccountID:     config.GetString(config.FeeAccountKey),
		RequoteDelay:     config.GetDuration(config.RequoteDelayKey),
		QuoteRefreshRate: config.GetInt(config.QuoteRefreshRateKey),
	})
	// the fee account must exist before the first sale settles
	if _, err := appSvc.Operator().CreateAccount(
		context.Background(), config.GetString(config.FeeAccountKey), decimal.Zero,
	); err != nil && !errors.Is(err, domain.ErrAccountAlreadyExist) {
		log.WithError(err).Fatal("error while provisioning fee account")
	}

	appSvc.Start()
	defer appSvc.Stop()

	httpSvc := httpinterface.NewService(
		config.GetInt(config.ListeningPortKey),
		appSvc.Trade(), appSvc.Operator(), socketSvc.Handler,
	)
	go func() {
		if err := httpSvc.Start(); err != nil {
			log.WithError(err).Fatal("error listening on http interface")
		}
	}()

	log.Debug("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSvc.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("error while shutting down http interface")
	}

	log.Debug("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		return inmemory.NewRepoManager(), nil
	}
	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	return dbbadger.NewRepoManager(dbDir, nil)
}
