package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiheater "github.com/kilianp07/carheater/api/heater"
	"github.com/kilianp07/carheater/config"
	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/kilianp07/carheater/infra/mqtt"
)

func TestStatusForwarderPublishesRetainedStatus(t *testing.T) {
	mc := mqtt.NewMockClient()
	now := time.Date(2019, 12, 12, 8, 0, 0, 0, time.UTC)
	fw := newStatusForwarder(mc, config.StatusConfig{Topic: "carheater/status"}, func() time.Time { return now })

	sub := make(chan scheduler.Status, 1)
	sub <- scheduler.Status{ReadyTime: heating.MustParseTimeOfDay("09:30"), Enabled: true, HeatingDurationMinutes: 60, Armed: true}
	close(sub)
	fw.run(context.Background(), sub)

	raw, ok := mc.Status("carheater/status")
	require.True(t, ok)

	var out apiheater.Response
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "09:30", out.ReadyTime)
	assert.Equal(t, "Starting", out.Phase)
	assert.Equal(t, "in 30 minutes", out.NextActionIn)
}
