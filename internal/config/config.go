// Package config is the thin, out-of-scope collaborator that turns a
// loosely-typed configuration source (environment, file, flags --
// whatever the caller has already parsed into a map) into the
// data.StorageSettings the data store's blocks are constructed with.
// The data store itself never parses configuration; it only consumes
// the already-decoded settings, so this is the only place in the
// module that talks to an external config representation.
package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/cbarrick/exl/data"
)

// Load decodes a per-block configuration from a generic map, such as
// one produced by parsing a config file or collecting environment
// variables, into the [6]data.StorageSettings data.NewStore expects.
// Any block omitted from raw falls back to data.DefaultSettings.
//
// raw is expected to have, optionally, one key per entry of
// data.BlockNames, each itself a map matching data.StorageSettings'
// mapstructure tags.
func Load(raw map[string]interface{}) ([6]data.StorageSettings, error) {
	settings := data.DefaultBlockSettings()
	for i, name := range data.BlockNames {
		section, ok := raw[name]
		if !ok {
			continue
		}
		if err := mapstructure.Decode(section, &settings[i]); err != nil {
			return settings, errors.Wrapf(err, "config: decoding block %q", name)
		}
	}
	return settings, nil
}
