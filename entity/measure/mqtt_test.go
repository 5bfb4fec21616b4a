package measure_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/entity/measure"
)

func TestDecodeMeasurementFlows(t *testing.T) {
	pcu := measure.NewPCUConverter(nil)

	m, err := measure.DecodeMeasurement([]byte(`{
		"flows_pcu_h": {"north": 800, "east": 1200},
		"queues": {"north": 12},
		"total_waiting_s": 340.5,
		"vehicle_count": 41
	}`), pcu)
	assert.NoError(t, err)
	assert.Equal(t, 800.0, m.Flows[entity.DirectionNorth])
	assert.Equal(t, 1200.0, m.Flows[entity.DirectionEast])
	assert.Equal(t, 12, m.Queues[entity.DirectionNorth])
	assert.Equal(t, 340.5, m.TotalWaitingS)
	assert.Equal(t, 41, m.VehicleCount)
}

// 流量缺失时由车型计数经PCU换算折算
func TestDecodeMeasurementFromVehicleCounts(t *testing.T) {
	pcu := measure.NewPCUConverter(nil)

	m, err := measure.DecodeMeasurement([]byte(`{
		"vehicle_counts": {"north": {"car": 10, "motorcycle": 25, "bus": 3, "auto_rickshaw": 8, "truck": 2}},
		"interval_s": 60
	}`), pcu)
	assert.NoError(t, err)
	// 34.9 PCU / 60s × 3600 = 2094 PCU/小时
	assert.InDelta(t, 2094.0, m.Flows[entity.DirectionNorth], 1e-9)
}

// 未知方向键被跳过，不影响其他方向
func TestDecodeMeasurementUnknownDirection(t *testing.T) {
	pcu := measure.NewPCUConverter(nil)

	m, err := measure.DecodeMeasurement([]byte(`{
		"flows_pcu_h": {"north": 800, "northeast": 500},
		"queues": {"up": 3}
	}`), pcu)
	assert.NoError(t, err)
	assert.Len(t, m.Flows, 1)
	assert.Empty(t, m.Queues)
}

func TestDecodeMeasurementBadPayload(t *testing.T) {
	_, err := measure.DecodeMeasurement([]byte(`{not json`), measure.NewPCUConverter(nil))
	assert.Error(t, err)
}

func TestEncodeTiming(t *testing.T) {
	payload, err := measure.EncodeTiming("J001", []float64{22, 33})
	assert.NoError(t, err)

	var decoded struct {
		JunctionID string    `json:"junction_id"`
		GreensS    []float64 `json:"greens_s"`
		Timestamp  int64     `json:"timestamp"`
	}
	assert.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "J001", decoded.JunctionID)
	assert.Equal(t, []float64{22, 33}, decoded.GreensS)
	assert.NotZero(t, decoded.Timestamp)
}
