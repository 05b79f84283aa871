package domain

import (
	"strconv"
	"time"
)

// Measurement names used when persisting telemetry.
const (
	MeasurementGPUTemps    = "gpu_temps"
	MeasurementRoomTemp    = "room_temp"
	MeasurementFanStates   = "fan_states"
	MeasurementEnvironment = "environment"
	MeasurementTrends      = "advanced_trends"
)

// Point is a tagged, timestamped set of numeric fields — the unit of
// durable telemetry storage. One telemetry payload fans out into one point
// per GPU, one for the room, and one per fan.
type Point struct {
	Measurement string             `json:"measurement" bson:"measurement"`
	Tags        map[string]string  `json:"tags" bson:"tags"`
	Fields      map[string]float64 `json:"fields" bson:"fields"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
}

// PointsFromTelemetry flattens a telemetry payload into storage points.
func PointsFromTelemetry(p *TelemetryPayload) []*Point {
	ts, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	points := make([]*Point, 0, len(p.Sensors.GPUTemps)+len(p.Fans.FanStates)+1)

	for _, g := range p.Sensors.GPUTemps {
		points = append(points, &Point{
			Measurement: MeasurementGPUTemps,
			Tags: map[string]string{
				"device_id": p.DeviceID,
				"gpu_id":    strconv.Itoa(g.GPUID),
			},
			Fields: map[string]float64{
				"temperature": g.Temperature,
				"workload":    g.Workload,
			},
			Timestamp: ts,
		})
	}

	points = append(points, &Point{
		Measurement: MeasurementRoomTemp,
		Tags:        map[string]string{"device_id": p.DeviceID},
		Fields:      map[string]float64{"temperature": p.Sensors.RoomTemp},
		Timestamp:   ts,
	})

	for _, f := range p.Fans.FanStates {
		points = append(points, &Point{
			Measurement: MeasurementFanStates,
			Tags: map[string]string{
				"device_id": p.DeviceID,
				"fan_id":    strconv.Itoa(f.FanID),
			},
			Fields: map[string]float64{
				"rpm":      float64(f.RPM),
				"pwm_duty": float64(f.PWMDuty),
			},
			Timestamp: ts,
		})
	}

	return points
}

// TrendPoint captures one computed degradation snapshot so history
// queries can chart CI/FWI alongside the raw sensor series.
func TrendPoint(deviceID string, ts time.Time, ci, fwi, coolingEfficiency, fanPower float64) *Point {
	return &Point{
		Measurement: MeasurementTrends,
		Tags:        map[string]string{"device_id": deviceID},
		Fields: map[string]float64{
			"corrosion_index":    ci,
			"fan_wear_index":     fwi,
			"cooling_efficiency": coolingEfficiency,
			"fan_power":          fanPower,
		},
		Timestamp: ts,
	}
}

// PointsFromEnvironmental flattens an environmental payload into one point.
func PointsFromEnvironmental(p *EnvironmentalPayload) []*Point {
	ts, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	return []*Point{{
		Measurement: MeasurementEnvironment,
		Tags:        map[string]string{"device_id": p.DeviceID},
		Fields: map[string]float64{
			"humidity":           p.Humidity,
			"dust":               p.Dust,
			"dehumidifier_power": float64(p.Actuators.DehumidifierPower),
			"humidifier_power":   float64(p.Actuators.HumidifierPower),
		},
		Timestamp: ts,
	}}
}

