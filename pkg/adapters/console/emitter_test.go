package console_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshay-nasa/city-scout/pkg/adapters/console"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

func TestEmitter_WritesOneLinePerAspect(t *testing.T) {
	var buf bytes.Buffer
	p := core.NewPublisher(console.NewEmitter(&buf), core.DefaultCatalogConfig(), nil)

	require.NoError(t, p.Publish(context.Background(), "abc123", core.Fields{"status": "exported"}, true))

	var aspects []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var line struct {
			Proposal struct {
				AspectName string `json:"aspectName"`
				EntityURN  string `json:"entityUrn"`
			} `json:"proposal"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		assert.Equal(t, "urn:li:dataset:(urn:li:dataPlatform:firestore,itinerary_abc123,PROD)", line.Proposal.EntityURN)
		aspects = append(aspects, line.Proposal.AspectName)
	}
	assert.Equal(t, []string{"datasetProperties", "globalTags", "upstreamLineage"}, aspects)
}

func TestEmitter_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := core.NewPublisher(console.NewEmitter(&buf), core.DefaultCatalogConfig(), nil).Publish(ctx, "x", core.Fields{}, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
