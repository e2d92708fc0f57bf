package main

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/adapters/github"
	"inkwell/internal/platform/cache"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/logger"
	phttp "inkwell/internal/platform/net/http"

	"inkwell/internal/services/api"
	contentsvc "inkwell/internal/services/content"
	"inkwell/internal/services/revalidate"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	ghCfg := root.Prefix("GITHUB_")
	siteCfg := root.Prefix("SITE_")

	// bring up logging early
	l := logger.Get()

	env := strings.ToLower(root.MayEnum("APP_ENV", "development", "development", "production"))
	production := env == "production"

	// tokenless is a degraded mode for local work, never for production
	token := ghCfg.MayString("TOKEN", "")
	if production && token == "" {
		l.Panic().Msg("GITHUB_TOKEN is required in production")
	}

	gh := github.NewClient(github.Options{
		Owner: ghCfg.MustString("OWNER"),
		Repo:  ghCfg.MustString("REPO"),
		Token: token,
	})

	ttl := time.Duration(siteCfg.MayInt("REVALIDATE_SECONDS", 3600)) * time.Second
	store := cache.New(cache.Options{DefaultTTL: ttl})

	contents := contentsvc.New(gh, store, contentsvc.Options{TTL: ttl, Production: production})
	hooks := revalidate.New(store, contents, revalidate.Options{
		Secret:     ghCfg.MayString("WEBHOOK_SECRET", ""),
		Production: production,
	})

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	var origins []string
	if base := siteCfg.MayString("BASE_URL", ""); base != "" {
		origins = []string{base}
	}

	api.Mount(srv.Router(), api.Options{
		Content:        contents,
		Revalidate:     hooks,
		AllowedOrigins: origins,
	})

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
