package main

import (
	"context"
	"flag"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"

	"github.com/diwise/wikibase-datamodel/pkg/dumpfiles"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	servicePort FlagType = iota

	configPath
	opaPath

	entityDataURL
)

func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {
	flags[servicePort] = env.GetVariableOrDefault(ctx, "SERVICE_PORT", "")
	flags[configPath] = env.GetVariableOrDefault(ctx, "DUMPFILE_CONFIG_PATH", "")
	flags[opaPath] = env.GetVariableOrDefault(ctx, "POLICY_RULES_PATH", "/opt/wikibase/config/authz.rego")
	flags[entityDataURL] = env.GetVariableOrDefault(ctx, "ENTITY_DATA_URL", "")

	apply := func(f FlagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	flag.Func("port", "port to serve the lookup api on, no api is served if empty", apply(servicePort))
	flag.Func("config", "yaml file with dump sources, environment variables are used if empty", apply(configPath))
	flag.Func("policies", "a file containing authz policies", apply(opaPath))
	flag.Func("entitydata", "base url of a wiki to fetch entities missing from the store, i.e. https://www.wikidata.org", apply(entityDataURL))
	flag.Parse()

	return flags
}

func loadDumpConfiguration(ctx context.Context, path string) (*dumpfiles.Config, error) {
	if path == "" {
		return dumpfiles.ConfigFromEnvironment(ctx)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return dumpfiles.LoadConfiguration(f)
}
