package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bilhallen/filter-engine/pkg/catalog"
	"github.com/bilhallen/filter-engine/pkg/common"
	"github.com/bilhallen/filter-engine/pkg/dispatch"
	"github.com/bilhallen/filter-engine/pkg/engine"
	"github.com/bilhallen/filter-engine/pkg/hierarchy"
	"github.com/bilhallen/filter-engine/pkg/server"
	"github.com/bilhallen/filter-engine/pkg/tracking"
)

func loadConfig() {
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("debug_address", ":8081")
	viper.SetDefault("base_path", "/cars")
	viper.SetDefault("page_size", 20)
	viper.SetDefault("debounce_ms", 300)
	viper.SetDefault("cache_ttl_s", 60)
	viper.SetDefault("hierarchy_ttl_s", 300)
	viper.SetDefault("profiling", true)
	viper.SetConfigName("carfilter")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/carfilter")
	if err := viper.ReadInConfig(); err != nil {
		logrus.WithError(err).Debug("no config file, using env and defaults")
	}
	viper.AutomaticEnv()
}

func loadListings(idx *catalog.MemoryIndex, path string) {
	file, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Warnf("could not open listings file %s", path)
		return
	}
	defer file.Close()
	var listings []catalog.Listing
	if err := json.NewDecoder(file).Decode(&listings); err != nil {
		logrus.WithError(err).Warn("could not decode listings file")
		return
	}
	for i := range listings {
		idx.Upsert(&listings[i])
	}
	logrus.Infof("loaded %d listings", len(listings))
}

func loadHierarchy(store *hierarchy.MemoryStore, path string) {
	file, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Warnf("could not open hierarchy file %s", path)
		return
	}
	defer file.Close()
	var nodes []hierarchy.Node
	if err := json.NewDecoder(file).Decode(&nodes); err != nil {
		logrus.WithError(err).Warn("could not decode hierarchy file")
		return
	}
	for _, n := range nodes {
		store.Upsert(n)
	}
	logrus.Infof("loaded %d hierarchy nodes", len(nodes))
}

func main() {
	loadConfig()
	logrus.SetFormatter(&logrus.JSONFormatter{})

	redisUrl := viper.GetString("redis_url")
	redisPassword := viper.GetString("redis_password")
	rabbitUrl := viper.GetString("rabbit_url")

	renderer := catalog.NewTemplateRenderer()
	idx := catalog.NewMemoryIndex(renderer)
	if path := viper.GetString("listings_file"); path != "" {
		loadListings(idx, path)
	}

	var hier hierarchy.Store
	if upstream := viper.GetString("hierarchy_url"); upstream != "" {
		remote := hierarchy.NewRemoteStore(upstream, time.Duration(viper.GetInt("hierarchy_ttl_s"))*time.Second)
		if redisUrl != "" {
			hier = hierarchy.NewCachedStore(remote, redisUrl, redisPassword, 0, time.Duration(viper.GetInt("hierarchy_ttl_s"))*time.Second)
		} else {
			hier = remote
		}
	} else {
		mem := hierarchy.NewMemoryStore()
		mem.CountFn = idx.CountForCategory
		if path := viper.GetString("hierarchy_file"); path != "" {
			loadHierarchy(mem, path)
		}
		hier = mem
	}

	var store catalog.Store = idx
	if redisUrl != "" {
		cache := catalog.NewResultCache(redisUrl, redisPassword, 0, time.Duration(viper.GetInt("cache_ttl_s"))*time.Second)
		store = &catalog.CachedStore{Inner: idx, Cache: cache, Generation: idx.Generation}
		logrus.Infof("result cache enabled, url: %s", redisUrl)
	}

	if rabbitUrl != "" {
		consumer := &catalog.ListingConsumer{
			RabbitTopics: catalog.RabbitTopics{
				ListingUpsertedTopic: "listing_upserted",
				ListingDeletedTopic:  "listing_deleted",
				Url:                  rabbitUrl,
			},
			Index: idx,
		}
		if err := consumer.Connect(); err != nil {
			logrus.WithError(err).Fatal("failed to connect listing feed")
		}
		logrus.Info("listing feed connected")
	}

	trk := tracking.NewLogTracker(logrus.StandardLogger())
	eng := engine.New()
	binding := server.NewPageBinding()

	disp := dispatch.New(eng, store, trk, nil)
	disp.Debounce = time.Duration(viper.GetInt("debounce_ms")) * time.Millisecond
	disp.PageSize = viper.GetInt("page_size")
	disp.Navigator = binding
	disp.Urls = binding
	disp.Results = binding
	disp.History = binding

	srv := &server.WebServer{
		Engine:     eng,
		Dispatcher: disp,
		Store:      store,
		Hierarchy:  hier,
		Tracking:   trk,
		Binding:    binding,
		Log:        logrus.StandardLogger(),
		BasePath:   viper.GetString("base_path"),
		PageSize:   viper.GetInt("page_size"),
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", srv.ClientHandler()))
	mux.Handle(srv.BasePath+"/", srv.FilterHandler())

	go func() {
		debugMux := http.NewServeMux()
		debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		debugMux.Handle("/metrics", promhttp.Handler())
		if viper.GetBool("profiling") {
			debugMux.HandleFunc("/debug/pprof/", pprof.Index)
			debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
			debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
			debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		}
		logrus.Infof("starting debug server %s", viper.GetString("debug_address"))
		logrus.Fatal(http.ListenAndServe(viper.GetString("debug_address"), debugMux))
	}()

	httpServer := &http.Server{
		Addr:              viper.GetString("listen_address"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	common.RunServerWithShutdown(httpServer, "filter engine", 15*time.Second, func(ctx context.Context) error {
		if closer, ok := hier.(interface{ Close() error }); ok {
			return closer.Close()
		}
		return nil
	})
}
