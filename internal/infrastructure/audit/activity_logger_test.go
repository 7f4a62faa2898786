package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/internal/application/ports"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/infrastructure/audit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogActivity(t *testing.T) {
	var buf bytes.Buffer
	l := audit.NewActivityLogger(zerolog.New(&buf))

	ports.LogBestEffort(context.Background(), l, entity.ActivityEvent{
		Action:   "movement.recorded",
		Entity:   "stock_movement",
		EntityID: "m1",
		Actor:    "u1",
		Meta:     map[string]any{"type": "OUT"},
		At:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, true, line["audit"])
	assert.Equal(t, "m1", line["entity_id"])
	assert.Equal(t, "OUT", line["meta"].(map[string]any)["type"])
}
