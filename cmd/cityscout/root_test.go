package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshay-nasa/city-scout/internal/platform"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, "json").Info("metadata and lineage pushed", "doc_id", "abc123")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc123", entry["doc_id"])

	buf.Reset()
	logger := newLogger(&buf, false, "text")
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true, "text").Debug("shown")
	assert.True(t, strings.Contains(buf.String(), "msg=shown"))
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flags.String("source", "", "")
	flags.String("collection", "", "")
	require.NoError(t, flags.Parse([]string{"--source", "fs"}))

	v, err := platform.NewViper("")
	require.NoError(t, err)
	bindFlags(v, flags, map[string]string{
		"source.type":       "source",
		"source.collection": "collection",
	})

	cfg, err := platform.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, platform.SourceFS, cfg.Source.Type, "changed flag wins")
	assert.Equal(t, "itineraries", cfg.Source.Collection, "unchanged flag keeps the default")
}
