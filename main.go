package main

import (
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"resident-portal/api"
	"resident-portal/schedule"
	"resident-portal/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid TIMEZONE: %v", err)
		}
		loc = l
	}

	seed, err := storage.LoadSeed(os.Getenv("SEED_FILE"))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	store := schedule.NewStore()
	if err := seed.Populate(store, loc); err != nil {
		log.Fatalf("seed: %v", err)
	}
	recurring, err := seed.RecurringActivities(loc)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	horizon := time.Duration(0)
	if v := os.Getenv("ACTIVITY_HORIZON"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid ACTIVITY_HORIZON: %v", err)
		}
		horizon = d
	}
	expander := schedule.NewExpander(store, recurring, horizon)
	if _, err := expander.Refresh(time.Now().In(loc)); err != nil {
		log.Fatalf("recurring activities: %v", err)
	}
	refreshCron := os.Getenv("REFRESH_CRON")
	if refreshCron == "" {
		refreshCron = "@hourly"
	}
	cr := cron.New()
	if _, err := cr.AddFunc(refreshCron, func() {
		if _, err := expander.Refresh(time.Now().In(loc)); err != nil {
			log.Errorf("recurring activities: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid REFRESH_CRON: %v", err)
	}
	cr.Start()

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatalf("embedded redis: %v", err)
		}
		log.Warnf("REDIS_CONNECTION_STRING not set, using embedded redis at %s", mr.Addr())
		redisConn = "redis://" + mr.Addr()
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	ttl := 24 * time.Hour
	if v := os.Getenv("DEDUPER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid DEDUPER_TTL: %v", err)
		}
		ttl = d
	}
	deduper := api.NewRedisDeduper(rc, ttl)
	profiles := storage.NewProfiles(rc, seed.Profiles)

	var auth *api.Auth
	if domainName := os.Getenv("AUTH_DOMAIN"); domainName != "" {
		audience := os.Getenv("AUTH_AUDIENCE")
		if audience == "" {
			log.Fatal("missing AUTH_AUDIENCE")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domainName)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewJWKSAuth(jwks, audience, "https://"+domainName+"/")
	} else {
		secret := []byte(os.Getenv("PORTAL_JWT_SECRET"))
		if len(secret) == 0 {
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				log.Fatalf("secret: %v", err)
			}
			log.Warn("PORTAL_JWT_SECRET not set, tokens will not survive a restart")
		}
		auth = api.NewLocalAuth(secret)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, api.Deps{
		Store:     store,
		Residents: seed.Residents,
		Profiles:  profiles,
		Feed:      storage.NewFeedStore(seed.CommunityPosts, seed.PersonalPosts),
		Requests:  storage.NewRequestStore(seed.Requests),
		Auth:      auth,
		Tokens:    auth,
		Deduper:   deduper,
		Logger:    log.New(),
		Location:  loc,
	})

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
