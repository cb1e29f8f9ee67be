package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/spf13/afero"

	"github.com/diwise/wikibase-datamodel/internal/pkg/application/entities"
	"github.com/diwise/wikibase-datamodel/internal/pkg/infrastructure/router"
	"github.com/diwise/wikibase-datamodel/internal/pkg/infrastructure/storage"
	"github.com/diwise/wikibase-datamodel/internal/pkg/presentation/api"
	"github.com/diwise/wikibase-datamodel/pkg/client"
	"github.com/diwise/wikibase-datamodel/pkg/dumpfiles"
	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

const (
	appName string = "wikibase-dump"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, FlagMap{})

	cfg, err := loadDumpConfiguration(ctx, flags[configPath])
	if err != nil {
		log.Error("failed to load dump configuration", "err", err.Error())
		os.Exit(1)
	}

	deserializer := datamodel.NewDeserializer(cfg.SiteIRI)

	store, err := storage.Connect(ctx, storage.LoadConfiguration(ctx), deserializer)
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	files, err := cfg.DumpFiles(afero.NewOsFs())
	if err != nil {
		log.Error("failed to create dump files", "err", err.Error())
		os.Exit(1)
	}

	processor := dumpfiles.NewProcessor(deserializer, cfg.Workers)

	for _, df := range files {
		l := log.With(slog.String("dumpfile", df.String()))

		if !df.IsAvailable(ctx) {
			l.Warn("dump file is not available")
			continue
		}

		result, err := processor.Process(ctx, df, store.SaveEntityDocument)
		if err != nil {
			l.Error("failed to process dump file", "err", err.Error())
			os.Exit(1)
		}

		l.Info("done processing", slog.Int64("processed", result.Processed), slog.Int64("failed", result.Failed))
	}

	counts, err := store.CountEntityDocuments(ctx)
	if err != nil {
		log.Error("failed to count entity documents", "err", err.Error())
		os.Exit(1)
	}

	for entityType, count := range counts {
		log.Info("stored entity documents", slog.String("type", entityType), slog.Int64("count", count))
	}

	if flags[servicePort] == "" {
		return
	}

	var fetcher entities.EntityDocumentFetcher
	if flags[entityDataURL] != "" {
		fetcher = client.NewEntityDataClient(flags[entityDataURL], client.SiteIRI(cfg.SiteIRI))
	}

	policies, err := os.Open(flags[opaPath])
	if err != nil {
		log.Error("unable to open opa policy file", "err", err.Error())
		os.Exit(1)
	}
	defer policies.Close()

	r := router.New(appName)

	err = api.RegisterHandlers(ctx, r, policies, entities.New(store, fetcher))
	if err != nil {
		log.Error("failed to register api handlers", "err", err.Error())
		os.Exit(1)
	}

	log.Info("starting to listen for connections", "port", flags[servicePort])

	err = http.ListenAndServe(":"+flags[servicePort], r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}
