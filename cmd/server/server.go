package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/axellelanca/clickfix/cmd"
	"github.com/axellelanca/clickfix/internal/api"
	"github.com/axellelanca/clickfix/internal/content"
	"github.com/axellelanca/clickfix/internal/database"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/notify"
	"github.com/axellelanca/clickfix/internal/repository"
	"github.com/axellelanca/clickfix/internal/services"
)

// shutdownTimeout bounds the graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur de suivi des exercices.",
	Long: `Cette commande initialise la base de données, configure le canal d'alertes,
enregistre les routes de suivi et l'API d'administration, puis lance le serveur HTTP.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.Cfg

		// Initialiser la base de données
		db, err := database.Open(cfg.Database)
		if err != nil {
			logger.Fatalf("Échec de la connexion à la base de données : %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser les repositories
		campaignRepo := repository.NewCampaignRepository(db)
		targetRepo := repository.NewTargetRepository(db)
		eventRepo := repository.NewEventRepository(db)
		logger.Infof("Repositories initialisés.")

		// Canal d'alertes
		notifier, err := notify.New(cfg.Notify)
		if err != nil {
			logger.Fatalf("Échec de l'initialisation des notifications : %v", err)
		}
		if closer, ok := notifier.(io.Closer); ok {
			defer closer.Close()
		}
		logger.Infof("Notifications: %s", cfg.Notify.EffectiveDriver())

		if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
			logger.Fatalf("admin.username et admin.password sont requis")
		}

		// Initialiser les services métiers
		catalog := content.NewFSResolver(cfg.Content.Root)
		recorder := services.NewEventRecorder(targetRepo, eventRepo, notifier, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
		aggregator := services.NewFunnelAggregator(campaignRepo, eventRepo)
		deps := api.Dependencies{
			Recorder:   recorder,
			Resolver:   services.NewLureResolver(campaignRepo, targetRepo, catalog, recorder),
			Aggregator: aggregator,
			Campaigns:  services.NewCampaignService(campaignRepo, targetRepo, aggregator),
			Catalog:    catalog,
			Routes:     api.NewRouteTable(cfg.Endpoints),
			Admin:      gin.Accounts{cfg.Admin.Username: cfg.Admin.Password},

			TrainingURL: cfg.Training.URL,
		}
		logger.Infof("Services métiers initialisés.")

		if cfg.Server.Env != "development" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(api.RequestLogger(), gin.Recovery())

		// X-Forwarded-For n'est honoré que derrière un proxy de confiance
		if cfg.Server.BehindProxy {
			err = router.SetTrustedProxies(cfg.Server.TrustedProxies)
		} else {
			err = router.SetTrustedProxies(nil)
		}
		if err != nil {
			logger.Fatalf("Proxies de confiance invalides : %v", err)
		}

		api.SetupRoutes(router, deps)
		logger.Infof("Routes configurées (track=%s verify=%s training=%s).",
			deps.Routes.Track, deps.Routes.Verify, deps.Routes.TrainingTrack)

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:              serverAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Démarrer le serveur dans une goroutine pour ne pas bloquer.
		go func() {
			logger.Infof("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Attendre Ctrl+C ou un signal d'arrêt
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Infof("Signal d'arrêt reçu. Arrêt du serveur...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Arrêt forcé du serveur : %v", err)
			return
		}
		logger.Infof("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
