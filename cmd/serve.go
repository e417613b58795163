package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"linkvault/admin"
	"linkvault/analytics"
	"linkvault/catalog"
	"linkvault/common"
	"linkvault/database"
	"linkvault/email"
	"linkvault/models"
	"linkvault/settings"
	"linkvault/site"
	"linkvault/store"
)

const (
	sessionName     = "linkvault-session"
	sessionMaxAge   = 86400 * 7
	shutdownTimeout = 10 * time.Second
)

func Serve() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := loadEnv()
			if port != "" {
				env.Port = port
			}
			return runServer(env)
		},
	}

	command.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8080)")

	return command
}

func runServer(env common.Env) error {
	st := openStore(env)
	if _, err := st.SeedCatalog(models.SeedCategories()); err != nil {
		return err
	}

	db := common.ConnectAnalyticsDb(env.AnalyticsDB)
	if db != nil {
		if err := database.RunMigrations(db); err != nil {
			logrus.Warn("click analytics disabled, migrations failed")
			db = nil
		}
	}

	router, err := newRouter(env, st, db, "*/views/*.html")
	if err != nil {
		return err
	}
	router.Static("/public", "./public")

	var handler http.Handler = router
	if len(env.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   env.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
			AllowedHeaders:   []string{"Content-Type", "If-None-Match"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: true,
		})
		handler = c.Handler(router)
		logrus.WithField("origins", env.CORSOrigins).Info("CORS enabled")
	}

	server := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("starting server on port %s", env.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error stopping server: %v", err)
		return err
	}

	logrus.Info("server stopped")
	return nil
}

// newRouter wires every module onto a fresh engine. db may be nil.
func newRouter(env common.Env, st *store.Store, db *gorm.DB, templates string) (*gin.Engine, error) {
	secret, err := st.EnsureSecret()
	if err != nil {
		return nil, err
	}

	catalogService := catalog.NewService(st)
	settingsService := settings.NewService(st)
	analyticsModule := analytics.NewAnalyticsModule(db)
	siteModule := site.NewSiteModule(catalogService, settingsService, analyticsModule)
	adminModule := admin.NewAdminModule(catalogService, settingsService, analyticsModule, email.NewEmailService())

	router := gin.New()
	router.Use(gin.Logger(), siteModule.Recovery())

	sessionStore := cookie.NewStore([]byte(secret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   env.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, sessionStore))

	router.SetFuncMap(common.TemplateFuncs())
	router.LoadHTMLGlob(templates)

	adminModule.RegisterRoutes(router)
	siteModule.RegisterRoutes(router)

	return router, nil
}
